package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"it_store/internal/i18n"
	"it_store/internal/store"
	"it_store/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// productRequest 价格与库存用 json.Number 接收：JSON 数字、带引号的数字和表单字符串都能绑定，
// 再自行解析以便给出友好提示。
type productRequest struct {
	Name        string      `form:"name" json:"name"`
	Description string      `form:"description" json:"description"`
	Price       json.Number `form:"price" json:"price"`
	Stock       json.Number `form:"stock" json:"stock"`
	Category    string      `form:"category" json:"category"`
}

// toInput 解析表单；不做数值边界校验，负数价格与库存照常写入。
func (r productRequest) toInput() (store.ProductInput, i18n.Key, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return store.ProductInput{}, i18n.MissingField, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price.String()))
	if err != nil {
		return store.ProductInput{}, i18n.InvalidNumber, false
	}
	// 列类型是 decimal(12,2)，SQLite 不会替我们截断
	price = price.Round(2)
	stock, err := strconv.ParseInt(strings.TrimSpace(r.Stock.String()), 10, 64)
	if err != nil {
		return store.ProductInput{}, i18n.InvalidNumber, false
	}
	return store.ProductInput{
		Name:        name,
		Description: r.Description,
		Price:       price,
		Stock:       stock,
		Category:    strings.TrimSpace(r.Category),
	}, "", true
}

func listProducts(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListProducts(c.Request.Context())
		if err != nil {
			internalError(c, err)
			return
		}
		web.View(c, gin.H{"products": list})
	}
}

func productForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		web.View(c, gin.H{"form": "product", "fields": []string{"name", "description", "price", "stock", "category"}})
	}
}

func addProduct(s *store.Store, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBind(&req); err != nil {
			web.Redirect(c, web.KindError, i18n.InvalidNumber, "/product/add")
			return
		}
		in, key, ok := req.toInput()
		if !ok {
			web.Redirect(c, web.KindError, key, "/product/add")
			return
		}
		p, err := s.CreateProduct(c.Request.Context(), in)
		if err != nil {
			internalError(c, err)
			return
		}
		log.WithFields(logrus.Fields{"product_id": p.ID, "by": web.CurrentEmployee(c).Username}).Info("product added")
		web.Redirect(c, web.KindSuccess, i18n.ProductAdded, "/products")
	}
}

func editProductPage(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		p, err := s.GetProduct(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				web.Fail(c, http.StatusNotFound, i18n.NotFound)
				return
			}
			internalError(c, err)
			return
		}
		web.View(c, gin.H{"product": p})
	}
}

func editProduct(s *store.Store, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		back := "/product/edit/" + strconv.FormatUint(uint64(id), 10)

		var req productRequest
		if err := c.ShouldBind(&req); err != nil {
			web.Redirect(c, web.KindError, i18n.InvalidNumber, back)
			return
		}
		in, key, ok := req.toInput()
		if !ok {
			web.Redirect(c, web.KindError, key, back)
			return
		}
		if _, err := s.UpdateProduct(c.Request.Context(), id, in); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				web.Fail(c, http.StatusNotFound, i18n.NotFound)
				return
			}
			internalError(c, err)
			return
		}
		log.WithFields(logrus.Fields{"product_id": id, "by": web.CurrentEmployee(c).Username}).Info("product updated")
		web.Redirect(c, web.KindSuccess, i18n.ProductUpdated, "/products")
	}
}

func deleteProduct(s *store.Store, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := s.DeleteProduct(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				web.Fail(c, http.StatusNotFound, i18n.NotFound)
				return
			}
			internalError(c, err)
			return
		}
		log.WithFields(logrus.Fields{"product_id": id, "by": web.CurrentEmployee(c).Username}).Info("product deleted")
		web.Redirect(c, web.KindSuccess, i18n.ProductDeleted, "/products")
	}
}
