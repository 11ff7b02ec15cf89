package service

import (
	"context"
	"testing"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/poetrydeveloper/app-store-v2/internal/store/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestDefaults(t *testing.T) {
	svc, env := setupServices(t)
	p := testutil.SeedProduct(t, env.DB, "HAM-01", "Hammer")

	detail, err := svc.Request.CreateRequest(context.Background(), &CreateRequestRequest{
		Items: []CreateRequestItemInput{
			{ProductID: p.ID, Quantity: 2, PricePerUnit: decimal.RequireFromString("7.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCandidate, detail.Status)
	require.Len(t, detail.Items, 1)

	item := detail.Items[0]
	assert.Equal(t, entity.DefaultSupplier, item.Supplier)
	assert.Equal(t, entity.DefaultCustomer, item.Customer)
	assert.True(t, item.TotalCost.Equal(decimal.RequireFromString("14.5")))
	assert.Equal(t, "0/2", item.Progress)
	assert.Equal(t, 1, detail.Completion.TotalItems)
	assert.False(t, detail.Completed)
}

func TestCreateRequestValidation(t *testing.T) {
	svc, env := setupServices(t)
	p := testutil.SeedProduct(t, env.DB, "HAM-01", "Hammer")
	ctx := context.Background()

	_, err := svc.Request.CreateRequest(ctx, &CreateRequestRequest{Status: "ordered"})
	assertCause(t, err, ErrInvalidStatus)

	_, err = svc.Request.CreateRequest(ctx, &CreateRequestRequest{
		Items: []CreateRequestItemInput{{ProductID: p.ID, Quantity: 0}},
	})
	assertCause(t, err, ErrInvalidQuantity)

	_, err = svc.Request.CreateRequest(ctx, &CreateRequestRequest{
		Items: []CreateRequestItemInput{{ProductID: "nope", Quantity: 1}},
	})
	assertCause(t, err, ErrUnknownProduct)

	assert.EqualValues(t, 0, countRows(t, env, &entity.Request{}, "1 = 1"))
}

func TestChangeRequestStatus(t *testing.T) {
	svc, env := setupServices(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusCandidate, 2)
	ctx := context.Background()

	require.NoError(t, svc.Request.ChangeRequestStatus(ctx, item.RequestID, entity.RequestStatusInRequest))
	detail, err := svc.Request.GetRequest(ctx, item.RequestID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusInRequest, detail.Status)

	assertCause(t, svc.Request.ChangeRequestStatus(ctx, item.RequestID, "done"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.Request.ChangeRequestStatus(ctx, "missing", entity.RequestStatusExtra), repository.ErrNotFound)
}

func TestChangeItemsRequestStatus(t *testing.T) {
	svc, env := setupServices(t)
	a := testutil.SeedLine(t, env.DB, entity.RequestStatusCandidate, 2)
	b := testutil.SeedLine(t, env.DB, entity.RequestStatusCandidate, 2)

	changed, err := svc.Request.ChangeItemsRequestStatus(context.Background(), []string{a.ID, b.ID, a.ID}, entity.RequestStatusExtra)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.RequestID, b.RequestID}, changed)

	items, err := svc.Request.ListItemsByStatus(context.Background(), entity.RequestStatusExtra)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.Request.ListItemsByStatus(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateItem(t *testing.T) {
	svc, env := setupServices(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 5)
	deliver(t, svc, item.ID, "2025-01-05", 3)
	ctx := context.Background()

	qty := 3
	view, err := svc.Request.UpdateItem(ctx, item.ID, &UpdateItemRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, view.IsCompleted)
	assert.Equal(t, "3/3", view.Progress)

	zero := decimal.Zero
	_, err = svc.Request.UpdateItem(ctx, item.ID, &UpdateItemRequest{PricePerUnit: &zero})
	assertCause(t, err, ErrInvalidPrice)

	bad := 0
	_, err = svc.Request.UpdateItem(ctx, item.ID, &UpdateItemRequest{Quantity: &bad})
	assertCause(t, err, ErrInvalidQuantity)

	supplier := "Globex"
	view, err = svc.Request.UpdateItem(ctx, item.ID, &UpdateItemRequest{Supplier: &supplier})
	require.NoError(t, err)
	assert.Equal(t, "Globex", view.Supplier)
	assert.Equal(t, 3, testutil.ReloadItem(t, env.DB, item.ID).Quantity)
}

func TestSetItemCompletion(t *testing.T) {
	svc, env := setupServices(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 6)
	ctx := context.Background()

	view, err := svc.Request.SetItemCompletion(ctx, item.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 6, view.DeliveredQuantity)
	assert.True(t, view.IsCompleted)

	view, err = svc.Request.SetItemCompletion(ctx, item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, view.DeliveredQuantity)
	assert.False(t, view.IsCompleted)

	reloaded := testutil.ReloadItem(t, env.DB, item.ID)
	assert.Equal(t, 0, reloaded.DeliveredQuantity)
}

func TestListOpenItems(t *testing.T) {
	svc, env := setupServices(t)
	open := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 4)
	done := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 2)
	testutil.SeedLine(t, env.DB, entity.RequestStatusCandidate, 2)
	deliver(t, svc, done.ID, "2025-01-05", 2)

	items, err := svc.Request.ListOpenItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, open.ID, items[0].ID)
	require.NotNil(t, items[0].Product)
}

func TestGetRequestCompletion(t *testing.T) {
	svc, env := setupServices(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 2)
	deliver(t, svc, item.ID, "2025-01-05", 2)

	detail, err := svc.Request.GetRequest(context.Background(), item.RequestID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Completion.CompletedItems)
	assert.True(t, detail.Completed)

	_, err = svc.Request.GetRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
