package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"it_store/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recorderFunc func(ctx context.Context, m *model.StockMovement) error

func (f recorderFunc) RecordStockMovement(ctx context.Context, m *model.StockMovement) error {
	return f(ctx, m)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func validMessage() SaleMessage {
	return SaleMessage{
		EventID:    "evt-1",
		SaleID:     12,
		ProductID:  3,
		EmployeeID: 1,
		Quantity:   2,
		TotalPrice: decimal.RequireFromString("398.00"),
		StockAfter: 8,
		OccurredAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
}

func TestSaleMessageValidate(t *testing.T) {
	require.NoError(t, validMessage().Validate())

	broken := []func(*SaleMessage){
		func(m *SaleMessage) { m.EventID = "" },
		func(m *SaleMessage) { m.SaleID = 0 },
		func(m *SaleMessage) { m.ProductID = 0 },
		func(m *SaleMessage) { m.EmployeeID = 0 },
		func(m *SaleMessage) { m.Quantity = 0 },
		func(m *SaleMessage) { m.StockAfter = -1 },
	}
	for _, mutate := range broken {
		m := validMessage()
		mutate(&m)
		require.Error(t, m.Validate())
	}
}

func TestConsumerHandleWritesMovement(t *testing.T) {
	var got *model.StockMovement
	c := &Consumer{
		rec: recorderFunc(func(_ context.Context, m *model.StockMovement) error {
			got = m
			return nil
		}),
		log: quietLogger(),
	}

	b, err := json.Marshal(validMessage())
	require.NoError(t, err)
	require.NoError(t, c.handle(context.Background(), b))

	require.NotNil(t, got)
	require.Equal(t, uint(12), got.SaleID)
	require.Equal(t, int64(-2), got.Quantity)
	require.Equal(t, int64(8), got.StockAfter)
}

func TestConsumerHandleClassifiesErrors(t *testing.T) {
	storeErr := errors.New("disk full")
	c := &Consumer{
		rec: recorderFunc(func(context.Context, *model.StockMovement) error { return storeErr }),
		log: quietLogger(),
	}

	var bad badMessageError
	err := c.handle(context.Background(), []byte("{not json"))
	require.ErrorAs(t, err, &bad)

	invalid := validMessage()
	invalid.Quantity = 0
	b, _ := json.Marshal(invalid)
	err = c.handle(context.Background(), b)
	require.ErrorAs(t, err, &bad)

	b, _ = json.Marshal(validMessage())
	err = c.handle(context.Background(), b)
	require.ErrorIs(t, err, storeErr)
	require.False(t, errors.As(err, &bad))
}
