package model

import "time"

// StockMovement 由销售事件消费者写入的库存流水，每笔销售至多一条。
type StockMovement struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SaleID     uint  `gorm:"not null;uniqueIndex" json:"sale_id"`
	ProductID  uint  `gorm:"not null;index" json:"product_id"`
	EmployeeID uint  `gorm:"not null" json:"employee_id"`
	Quantity   int64 `gorm:"not null" json:"quantity"` // 负数表示出库
	StockAfter int64 `gorm:"not null" json:"stock_after"`
}

func (StockMovement) TableName() string { return "stock_movements" }

// All 返回需要自动建表的全部模型。
func All() []any {
	return []any{&Employee{}, &Product{}, &Sale{}, &StockMovement{}}
}
