package queue

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SaleMessage 是写入 Kafka 的销售完成事件。
type SaleMessage struct {
	EventID    string          `json:"event_id"`
	SaleID     uint            `json:"sale_id"`
	ProductID  uint            `json:"product_id"`
	EmployeeID uint            `json:"employee_id"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	StockAfter int64           `json:"stock_after"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (m SaleMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if m.SaleID == 0 {
		return fmt.Errorf("sale_id is required")
	}
	if m.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if m.EmployeeID == 0 {
		return fmt.Errorf("employee_id is required")
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	if m.StockAfter < 0 {
		return fmt.Errorf("stock_after must be >= 0")
	}
	return nil
}
