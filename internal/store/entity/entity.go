package entity

import "github.com/google/uuid"

// NewID 生成32位ID
func NewID() string {
	return uuid.New().String()[:32]
}

// All 需要迁移的全部实体
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
		&Request{},
		&RequestItem{},
		&Delivery{},
		&ProductUnit{},
		&TradingDay{},
		&Event{},
		&Sale{},
	}
}
