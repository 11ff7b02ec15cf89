package entity

import "time"

// ProductUnit 单品（按序列号追踪）
type ProductUnit struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	SerialNumber string    `json:"serial_number" gorm:"size:50;uniqueIndex;not null"`
	ProductID    string    `json:"product_id" gorm:"size:32;not null;index"`
	DeliveryID   string    `json:"delivery_id" gorm:"size:32;not null;index"`
	CreatedAt    time.Time `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (ProductUnit) TableName() string {
	return "store_product_units"
}
