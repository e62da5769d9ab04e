package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品目录。删除为软删除，历史销售仍能找到商品名称。
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string          `gorm:"size:200;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// Stock 不在写入时做边界校验；只有销售扣减保证不会低于 0。
	Stock    int64  `gorm:"not null;default:0" json:"stock"`
	Category string `gorm:"size:50" json:"category"`
}

func (Product) TableName() string { return "products" }
