package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradingDay 营业日
type TradingDay struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Date      time.Time `json:"date" gorm:"type:date;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`

	Events []Event `json:"events,omitempty" gorm:"foreignKey:TradingDayID"`
}

func (TradingDay) TableName() string {
	return "store_trading_days"
}

// Event 营业日事件
type Event struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	TradingDayID string    `json:"trading_day_id" gorm:"size:32;not null;index"`
	Type         string    `json:"type" gorm:"size:20;not null"` // sale/return/other
	Description  string    `json:"description" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`

	Sale *Sale `json:"sale,omitempty" gorm:"foreignKey:EventID"`
}

func (Event) TableName() string {
	return "store_events"
}

// 事件类型
const (
	EventTypeSale   = "sale"
	EventTypeReturn = "return"
	EventTypeOther  = "other"
)

// ValidEventType 事件类型是否合法
func ValidEventType(t string) bool {
	switch t {
	case EventTypeSale, EventTypeReturn, EventTypeOther:
		return true
	}
	return false
}

// Sale 销售记录，一个事件至多一笔，一个单品至多售出一次
type Sale struct {
	ID            string          `json:"id" gorm:"primaryKey;size:32"`
	EventID       string          `json:"event_id" gorm:"size:32;uniqueIndex;not null"`
	ProductUnitID string          `json:"product_unit_id" gorm:"size:32;uniqueIndex;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`

	ProductUnit *ProductUnit `json:"product_unit,omitempty" gorm:"foreignKey:ProductUnitID"`
}

func (Sale) TableName() string {
	return "store_sales"
}
