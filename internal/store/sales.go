package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"it_store/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleInput 描述一次收银请求。
type SaleInput struct {
	ProductID  uint
	EmployeeID uint
	Quantity   int64
}

// SaleResult 返回新建销售及扣减后的库存。
type SaleResult struct {
	Sale       model.Sale
	StockAfter int64
}

// RecordSale 在一个事务里完成「条件扣库存 → 写销售记录」。
// 扣减用 UPDATE ... WHERE stock >= ?，并发请求不会把库存扣成负数；
// 库存不足时返回 ErrInsufficientStock，事务回滚，无任何写入。
func (s *Store) RecordSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	if in.Quantity <= 0 {
		return SaleResult{}, ErrInvalidQuantity
	}

	var out SaleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		if err := tx.First(&p, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find product: %w", err)
		}

		now := time.Now().UTC()
		res := tx.Model(&model.Product{}).
			Where("id = ? AND stock >= ?", p.ID, in.Quantity).
			UpdateColumns(map[string]any{
				"stock":      gorm.Expr("stock - ?", in.Quantity),
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("decrement stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		sale := model.Sale{
			ProductID:  p.ID,
			EmployeeID: in.EmployeeID,
			Quantity:   in.Quantity,
			TotalPrice: p.Price.Mul(decimal.NewFromInt(in.Quantity)),
			SaleDate:   now,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		var stockAfter int64
		if err := tx.Model(&model.Product{}).Select("stock").Where("id = ?", p.ID).Row().Scan(&stockAfter); err != nil {
			return fmt.Errorf("read stock: %w", err)
		}

		out = SaleResult{Sale: sale, StockAfter: stockAfter}
		return nil
	})
	if err != nil {
		return SaleResult{}, err
	}
	return out, nil
}

// ListSales 按成交时间倒序返回全部销售；已删除商品照样关联出来。
func (s *Store) ListSales(ctx context.Context) ([]model.Sale, error) {
	return s.listSales(ctx, 0)
}

// RecentSales 返回最近 n 笔销售（首页使用）。
func (s *Store) RecentSales(ctx context.Context, n int) ([]model.Sale, error) {
	return s.listSales(ctx, n)
}

func (s *Store) listSales(ctx context.Context, limit int) ([]model.Sale, error) {
	q := s.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Employee").
		Order("sale_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.Sale
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return list, nil
}

// RecordStockMovement 幂等写入库存流水：同一 sale_id 重复投递直接当作成功。
func (s *Store) RecordStockMovement(ctx context.Context, m *model.StockMovement) error {
	err := s.db.WithContext(ctx).Create(m).Error
	if err != nil {
		if errorsLikeUnique(err) {
			return nil
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}
