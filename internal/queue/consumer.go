package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"it_store/internal/model"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// MovementRecorder 写入库存流水，需对同一 sale_id 幂等。
type MovementRecorder interface {
	RecordStockMovement(ctx context.Context, m *model.StockMovement) error
}

// Consumer 消费销售事件并落库存流水。
type Consumer struct {
	r   *kafka.Reader
	rec MovementRecorder
	log *logrus.Logger
}

func NewConsumer(brokers []string, topic, groupID string, rec MovementRecorder, log *logrus.Logger) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       1,
			MaxBytes:       1e6,
			CommitInterval: 0, // 处理成功后手动提交
		}),
		rec: rec,
		log: log,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

// Run 阻塞消费直到 ctx 取消。脏消息记录后直接提交，避免卡住分区。
func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				c.log.WithError(err).Error("consumer fetch")
			}
			return
		}

		if err := c.handle(ctx, m.Value); err != nil {
			var bad badMessageError
			if !errors.As(err, &bad) {
				// 落库失败不提交，重启后重新投递
				c.log.WithError(err).WithField("offset", m.Offset).Error("consumer handle")
				continue
			}
			c.log.WithError(err).WithField("offset", m.Offset).Warn("consumer drop bad message")
		}
		if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.WithError(err).Error("consumer commit")
		}
	}
}

type badMessageError struct{ err error }

func (e badMessageError) Error() string { return e.err.Error() }

// handle 解析一条销售事件并写入库存流水。
func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var msg SaleMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return badMessageError{fmt.Errorf("unmarshal: %w", err)}
	}
	if err := msg.Validate(); err != nil {
		return badMessageError{err}
	}

	mv := &model.StockMovement{
		SaleID:     msg.SaleID,
		ProductID:  msg.ProductID,
		EmployeeID: msg.EmployeeID,
		Quantity:   -msg.Quantity,
		StockAfter: msg.StockAfter,
	}
	if err := c.rec.RecordStockMovement(ctx, mv); err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"sale_id":     msg.SaleID,
		"product_id":  msg.ProductID,
		"stock_after": msg.StockAfter,
	}).Debug("stock movement recorded")
	return nil
}
