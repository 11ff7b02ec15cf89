package service

import (
	"errors"
	"testing"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(status string, quantity, delivered int) *entity.RequestItem {
	return &entity.RequestItem{
		ID:                "item-1",
		RequestID:         "req-1",
		Quantity:          quantity,
		DeliveredQuantity: delivered,
		Request: &entity.Request{
			ID:        "req-1",
			Status:    status,
			CreatedAt: time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC),
		},
	}
}

func delivery(date string, qty int, extra bool) *entity.Delivery {
	d, _ := time.Parse(dateLayout, date)
	return &entity.Delivery{RequestItemID: "item-1", DeliveryDate: d, Quantity: qty, ExtraShipment: extra}
}

func assertCause(t *testing.T, err error, cause error) {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.ErrorIs(t, err, cause)
}

func TestComputeTotalCostAndProgress(t *testing.T) {
	item := &entity.RequestItem{Quantity: 3, DeliveredQuantity: 1, PricePerUnit: decimal.RequireFromString("12.50")}
	assert.True(t, ComputeTotalCost(item).Equal(decimal.RequireFromString("37.5")))
	assert.Equal(t, Progress{Delivered: 1, Quantity: 3}, ComputeProgress(item))
	assert.Equal(t, "1/3", ComputeProgress(item).String())
}

func TestReconcile(t *testing.T) {
	item := &entity.RequestItem{Quantity: 5}

	applyDelta(item, 4)
	assert.Equal(t, 4, item.DeliveredQuantity)
	assert.False(t, item.IsCompleted)

	applyDelta(item, 1)
	assert.True(t, item.IsCompleted)

	applyDelta(item, 2)
	assert.Equal(t, 7, item.DeliveredQuantity)
	assert.True(t, item.IsCompleted)

	applyDelta(item, -3)
	assert.False(t, item.IsCompleted)

	applyDelta(item, -10)
	assert.Equal(t, 0, item.DeliveredQuantity)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		qty   int
		extra bool
		want  string
	}{
		{4, false, entity.DeliveryStatusPartial},
		{10, false, entity.DeliveryStatusFull},
		{12, false, entity.DeliveryStatusOver},
		{4, true, entity.DeliveryStatusExtra},
	}
	for _, tt := range tests {
		d := &entity.Delivery{Quantity: tt.qty, ExtraShipment: tt.extra}
		assert.Equal(t, tt.want, DeriveStatus(d, 10))
	}
}

func TestValidate(t *testing.T) {
	t.Run("same calendar day is rejected", func(t *testing.T) {
		assertCause(t, Validate(delivery("2025-01-01", 1, false), line("in_request", 5, 0), nil), ErrInvalidDate)
	})

	t.Run("date is checked before quantity", func(t *testing.T) {
		assertCause(t, Validate(delivery("2024-12-31", 0, false), line("in_request", 5, 0), nil), ErrInvalidDate)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		assertCause(t, Validate(delivery("2025-01-02", 0, false), line("in_request", 5, 0), nil), ErrInvalidQuantity)
	})

	t.Run("extra shipment needs extra request", func(t *testing.T) {
		assertCause(t, Validate(delivery("2025-01-02", 1, true), line("candidate", 5, 0), nil), ErrExtraNotAllowed)
	})

	t.Run("fulfilled line rejects new delivery", func(t *testing.T) {
		assertCause(t, Validate(delivery("2025-01-02", 1, false), line("in_request", 5, 5), nil), ErrLineAlreadyFulfilled)
	})

	t.Run("over allocation reports remaining", func(t *testing.T) {
		err := Validate(delivery("2025-01-02", 3, false), line("in_request", 5, 3), nil)
		assertCause(t, err, ErrOverAllocation)
		assert.Contains(t, err.Error(), "at most 2")
	})

	t.Run("edit on same line counts stored quantity", func(t *testing.T) {
		prev := &entity.Delivery{RequestItemID: "item-1", Quantity: 4}
		assert.NoError(t, Validate(delivery("2025-01-02", 10, false), line("in_request", 10, 10), prev))
		assertCause(t, Validate(delivery("2025-01-02", 11, false), line("in_request", 10, 10), prev), ErrOverAllocation)
	})

	t.Run("move onto fulfilled line is rejected", func(t *testing.T) {
		prev := &entity.Delivery{RequestItemID: "other", Quantity: 4}
		assertCause(t, Validate(delivery("2025-01-02", 1, false), line("in_request", 5, 5), prev), ErrLineAlreadyFulfilled)
	})

	t.Run("extra shipment skips capacity checks", func(t *testing.T) {
		assert.NoError(t, Validate(delivery("2025-01-02", 50, true), line("extra", 5, 5), nil))
	})
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC)

	d, err := parseDate("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2025-02-01T10:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDate("01/02/2025", now)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestDateOnlyUsesUTCCalendarDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	created := time.Date(2025, 1, 2, 3, 0, 0, 0, shanghai)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), dateOnly(created))

	item := &entity.RequestItem{ID: "item-1", Quantity: 5,
		Request: &entity.Request{Status: entity.RequestStatusInRequest, CreatedAt: created}}
	d := &entity.Delivery{RequestItemID: "item-1", Quantity: 1,
		DeliveryDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	assert.NoError(t, Validate(d, item, nil))
}
