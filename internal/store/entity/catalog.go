package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// Category 商品分类（树形）
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	ParentID  *string   `json:"parent_id" gorm:"size:32;index"`
	CreatedAt time.Time `json:"created_at"`

	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (Category) TableName() string {
	return "store_categories"
}

// Product 商品
type Product struct {
	ID         string          `json:"id" gorm:"primaryKey;size:32"`
	Code       string          `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name       string          `json:"name" gorm:"size:255;not null"`
	SearchName string          `json:"-" gorm:"size:255;index"`
	CategoryID *string         `json:"category_id" gorm:"size:32;index"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);default:0"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string {
	return "store_products"
}

// BeforeSave 维护大小写折叠后的名称，用于不区分大小写的搜索
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.SearchName = FoldName(p.Name)
	return nil
}

// FoldName 名称大小写折叠（支持西里尔字母等非ASCII字符）
func FoldName(s string) string {
	return cases.Fold().String(s)
}

// ProductHit 商品搜索结果
type ProductHit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
