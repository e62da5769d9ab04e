package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"it_store/internal/i18n"
	"it_store/internal/model"
	"it_store/internal/queue"
	"it_store/internal/store"
	"it_store/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 3 * time.Second

type saleRequest struct {
	ProductID json.Number `form:"product_id" json:"product_id"`
	Quantity  json.Number `form:"quantity" json:"quantity"`
}

// saleView 是销售列表的一行；商品已删除时仍展示名称，彻底丢失时给占位名。
type saleView struct {
	ID               uint            `json:"id"`
	ProductID        uint            `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductDeleted   bool            `json:"product_deleted"`
	EmployeeID       uint            `json:"employee_id"`
	EmployeeUsername string          `json:"employee_username"`
	EmployeeFullname string          `json:"employee_fullname"`
	Quantity         int64           `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	SaleDate         time.Time       `json:"sale_date"`
}

const missingProductName = "-"

func toSaleViews(list []model.Sale) []saleView {
	out := make([]saleView, 0, len(list))
	for _, s := range list {
		v := saleView{
			ID:          s.ID,
			ProductID:   s.ProductID,
			ProductName: missingProductName,
			EmployeeID:  s.EmployeeID,
			Quantity:    s.Quantity,
			TotalPrice:  s.TotalPrice,
			SaleDate:    s.SaleDate,
		}
		if s.Product != nil {
			v.ProductName = s.Product.Name
			v.ProductDeleted = s.Product.DeletedAt.Valid
		} else {
			v.ProductDeleted = true
		}
		if s.Employee != nil {
			v.EmployeeUsername = s.Employee.Username
			v.EmployeeFullname = s.Employee.Fullname
		}
		out = append(out, v)
	}
	return out
}

// listSales 按成交时间倒序列出全部销售。
func listSales(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListSales(c.Request.Context())
		if err != nil {
			internalError(c, err)
			return
		}
		web.View(c, gin.H{"sales": toSaleViews(list)})
	}
}

// saleForm 返回可选商品列表。
func saleForm(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListProducts(c.Request.Context())
		if err != nil {
			internalError(c, err)
			return
		}
		web.View(c, gin.H{"form": "sale", "fields": []string{"product_id", "quantity"}, "products": list})
	}
}

// addSale 收银：事务内条件扣库存并写销售记录，成功后尽力投递销售事件。
func addSale(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saleRequest
		if err := c.ShouldBind(&req); err != nil {
			web.Redirect(c, web.KindError, i18n.InvalidQuantity, "/sale/add")
			return
		}
		productID, err := strconv.ParseUint(strings.TrimSpace(req.ProductID.String()), 10, 32)
		if err != nil || productID == 0 {
			web.Fail(c, http.StatusNotFound, i18n.NotFound)
			return
		}
		quantity, err := strconv.ParseInt(strings.TrimSpace(req.Quantity.String()), 10, 64)
		if err != nil {
			web.Redirect(c, web.KindError, i18n.InvalidQuantity, "/sale/add")
			return
		}

		emp := web.CurrentEmployee(c)
		res, err := d.Store.RecordSale(c.Request.Context(), store.SaleInput{
			ProductID:  uint(productID),
			EmployeeID: emp.ID,
			Quantity:   quantity,
		})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrInvalidQuantity):
				d.Metrics.ObserveSale("invalid_quantity", 0)
				web.Redirect(c, web.KindError, i18n.InvalidQuantity, "/sale/add")
			case errors.Is(err, store.ErrNotFound):
				d.Metrics.ObserveSale("not_found", 0)
				web.Fail(c, http.StatusNotFound, i18n.NotFound)
			case errors.Is(err, store.ErrInsufficientStock):
				d.Metrics.ObserveSale("insufficient_stock", 0)
				d.Log.WithFields(logrus.Fields{
					"product_id": productID,
					"quantity":   quantity,
					"by":         emp.Username,
				}).Info("sale rejected: insufficient stock")
				web.Redirect(c, web.KindError, i18n.InsufficientStock, "/sale/add")
			default:
				d.Metrics.ObserveSale("error", 0)
				_ = c.Error(err)
				web.Redirect(c, web.KindError, i18n.InternalError, "/sale/add")
			}
			return
		}

		d.Metrics.ObserveSale("ok", res.Sale.Quantity)
		d.Log.WithFields(logrus.Fields{
			"sale_id":     res.Sale.ID,
			"product_id":  res.Sale.ProductID,
			"quantity":    res.Sale.Quantity,
			"total_price": res.Sale.TotalPrice.StringFixed(2),
			"stock_after": res.StockAfter,
			"by":          emp.Username,
		}).Info("sale recorded")

		publishSale(c.Request.Context(), d, res)
		web.Redirect(c, web.KindSuccess, i18n.SaleRecorded, "/sales")
	}
}

// publishSale 销售已提交，投递失败只记日志，不影响本次请求。
func publishSale(ctx context.Context, d Deps, res store.SaleResult) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := queue.SaleMessage{
		EventID:    uuid.NewString(),
		SaleID:     res.Sale.ID,
		ProductID:  res.Sale.ProductID,
		EmployeeID: res.Sale.EmployeeID,
		Quantity:   res.Sale.Quantity,
		TotalPrice: res.Sale.TotalPrice,
		StockAfter: res.StockAfter,
		OccurredAt: res.Sale.SaleDate,
	}
	if err := d.Events.Publish(pubCtx, msg); err != nil {
		d.Log.WithError(err).WithField("sale_id", res.Sale.ID).Warn("publish sale event failed")
	}
}
