package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale 销售记录，创建后不可修改。
// TotalPrice 在成交时按 price × quantity 固化，之后商品调价不回算。
type Sale struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	EmployeeID uint            `gorm:"not null;index" json:"employee_id"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	SaleDate   time.Time       `gorm:"not null;index" json:"sale_date"`

	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

func (Sale) TableName() string { return "sales" }
