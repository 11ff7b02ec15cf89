package service

import (
	"fmt"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/shopspring/decimal"
)

// ComputeTotalCost 行项总价 = 单价 × 数量
func ComputeTotalCost(item *entity.RequestItem) decimal.Decimal {
	return item.PricePerUnit.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Progress 交付进度
type Progress struct {
	Delivered int `json:"delivered"`
	Quantity  int `json:"quantity"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Delivered, p.Quantity)
}

// ComputeProgress 交付进度（已交付/申请数量）
func ComputeProgress(item *entity.RequestItem) Progress {
	return Progress{Delivered: item.DeliveredQuantity, Quantity: item.Quantity}
}

// reconcile 设置已交付数量并重算完成标志。
// 到货新建/编辑/删除、行项编辑、手工标记完成都只通过这里修改 delivered_quantity。
func reconcile(item *entity.RequestItem, delivered int) {
	if delivered < 0 {
		delivered = 0
	}
	item.DeliveredQuantity = delivered
	item.IsCompleted = delivered >= item.Quantity
}

func applyDelta(item *entity.RequestItem, delta int) {
	reconcile(item, item.DeliveredQuantity+delta)
}

// DeriveStatus 到货状态：额外到货为 extra，否则以本次数量对比行项申请数量
func DeriveStatus(d *entity.Delivery, requested int) string {
	switch {
	case d.ExtraShipment:
		return entity.DeliveryStatusExtra
	case d.Quantity < requested:
		return entity.DeliveryStatusPartial
	case d.Quantity > requested:
		return entity.DeliveryStatusOver
	default:
		return entity.DeliveryStatusFull
	}
}

// Validate 校验到货记录。item 需已加载 Request；previous 为编辑前的库内记录，新建时为 nil
func Validate(d *entity.Delivery, item *entity.RequestItem, previous *entity.Delivery) error {
	if !dateOnly(d.DeliveryDate).After(dateOnly(item.Request.CreatedAt)) {
		return invalid("delivery_date", ErrInvalidDate)
	}
	if d.Quantity < 1 {
		return invalid("quantity", ErrInvalidQuantity)
	}
	if d.ExtraShipment && item.Request.Status != entity.RequestStatusExtra {
		return invalid("extra_shipment", ErrExtraNotAllowed)
	}
	if d.ExtraShipment {
		return nil
	}

	remaining := item.Quantity - item.DeliveredQuantity
	sameLine := previous != nil && previous.RequestItemID == item.ID
	if sameLine {
		remaining += previous.Quantity
	}
	if !sameLine && remaining <= 0 {
		return invalid("request_item_id", ErrLineAlreadyFulfilled)
	}
	if d.Quantity > remaining {
		return invalidf("quantity", ErrOverAllocation, "at most %d units can be delivered", max(remaining, 0))
	}
	return nil
}

// snapshot 从申请行项复制快照字段
func snapshot(d *entity.Delivery, item *entity.RequestItem) {
	d.Supplier = item.Supplier
	d.Customer = item.Customer
	d.ProductID = item.ProductID
	d.RequestDate = dateOnly(item.Request.CreatedAt)
	d.ExtraRequest = item.Request.Status == entity.RequestStatusExtra
	d.PricePerUnit = item.PricePerUnit

	if d.ExtraShipment && d.Notes == "" {
		d.Notes = fmt.Sprintf("Extra shipment for request %s from %s",
			item.RequestID, d.RequestDate.Format(dateLayout))
	}
}

const dateLayout = "2006-01-02"

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate 解析 YYYY-MM-DD（兼容 RFC3339），空串返回 fallback 当天
func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return dateOnly(fallback), nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return dateOnly(t), nil
}
