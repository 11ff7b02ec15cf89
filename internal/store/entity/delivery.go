package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery 到货记录
// supplier/customer/product/price/request_date/extra_request 在保存时从申请行项快照，之后不再同步
type Delivery struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	RequestItemID string    `json:"request_item_id" gorm:"size:32;not null;index"`
	DeliveryDate  time.Time `json:"delivery_date" gorm:"type:date;not null;index"`
	Quantity      int       `json:"quantity" gorm:"not null;default:1"`
	Status        string    `json:"status" gorm:"size:20;not null;index"` // partial/over/full/extra
	ExtraShipment bool      `json:"extra_shipment" gorm:"not null;default:false"`
	Notes         string    `json:"notes" gorm:"type:text"`

	// 快照字段
	Supplier     string          `json:"supplier" gorm:"size:255"`
	Customer     string          `json:"customer" gorm:"size:255"`
	ProductID    string          `json:"product_id" gorm:"size:32;index"`
	RequestDate  time.Time       `json:"request_date" gorm:"type:date"`
	ExtraRequest bool            `json:"extra_request" gorm:"not null;default:false"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" gorm:"type:decimal(10,2);not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequestItem *RequestItem  `json:"request_item,omitempty" gorm:"foreignKey:RequestItemID"`
	Product     *Product      `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Units       []ProductUnit `json:"units,omitempty" gorm:"foreignKey:DeliveryID"`

	UnitsCreated int64 `json:"units_created" gorm:"-"`
}

func (Delivery) TableName() string {
	return "store_deliveries"
}

// 到货状态
const (
	DeliveryStatusPartial = "partial"
	DeliveryStatusOver    = "over"
	DeliveryStatusFull    = "full"
	DeliveryStatusExtra   = "extra"
)
