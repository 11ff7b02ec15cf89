package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request 采购申请
type Request struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Status    string    `json:"status" gorm:"size:20;not null;default:candidate;index"` // candidate/in_request/extra
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []RequestItem `json:"items,omitempty" gorm:"foreignKey:RequestID"`
}

func (Request) TableName() string {
	return "store_requests"
}

// 申请状态
const (
	RequestStatusCandidate = "candidate"
	RequestStatusInRequest = "in_request"
	RequestStatusExtra     = "extra"
)

// ValidRequestStatus 状态是否合法
func ValidRequestStatus(status string) bool {
	switch status {
	case RequestStatusCandidate, RequestStatusInRequest, RequestStatusExtra:
		return true
	}
	return false
}

// 行项默认值
const (
	DefaultSupplier = "unknown supplier"
	DefaultCustomer = "customer"
)

// RequestItem 申请行项
type RequestItem struct {
	ID                string          `json:"id" gorm:"primaryKey;size:32"`
	RequestID         string          `json:"request_id" gorm:"size:32;not null;index"`
	ProductID         string          `json:"product_id" gorm:"size:32;not null;index"`
	Quantity          int             `json:"quantity" gorm:"not null;default:1"`
	DeliveredQuantity int             `json:"delivered_quantity" gorm:"not null;default:0"`
	IsCompleted       bool            `json:"is_completed" gorm:"not null;default:false"`
	PricePerUnit      decimal.Decimal `json:"price_per_unit" gorm:"type:decimal(10,2);not null;default:0"`
	Supplier          string          `json:"supplier" gorm:"size:255"`
	Customer          string          `json:"customer" gorm:"size:255"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Request *Request `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (RequestItem) TableName() string {
	return "store_request_items"
}
