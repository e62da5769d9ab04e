package router

import (
	"fmt"
	"net/http"
	"strconv"

	"it_store/internal/auth"
	"it_store/internal/i18n"
	"it_store/internal/metrics"
	"it_store/internal/middleware"
	"it_store/internal/queue"
	"it_store/internal/session"
	"it_store/internal/store"
	"it_store/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps 汇总 handler 需要的依赖。
type Deps struct {
	Store    *store.Store
	Auth     *auth.Service
	Sessions session.Store
	Events   queue.Publisher
	Metrics  *metrics.Metrics
	Log      *logrus.Logger
	Session  middleware.SessionOptions

	// LoginLimiter 为 nil 时登录不限流。
	LoginLimiter gin.HandlerFunc

	// TrustedProxies 之外的来源，X-Forwarded-For 一律忽略，按 IP 限流才不会被伪造绕过。
	TrustedProxies []string
}

// Setup 注册全部 HTTP 路由；代理地址非法时返回错误。
func Setup(r *gin.Engine, d Deps) error {
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log), middleware.Metrics(d.Metrics), web.CookieOptions(d.Session.Secure))

	r.GET("/healthz", healthz(d.Store))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// 公开页面
	r.GET("/login", loginPage())
	loginChain := []gin.HandlerFunc{}
	if d.LoginLimiter != nil {
		loginChain = append(loginChain, d.LoginLimiter)
	}
	r.POST("/login", append(loginChain, login(d))...)
	r.GET("/register", registerPage())
	r.POST("/register", register(d))
	r.GET("/logout", logout(d))
	r.POST("/logout", logout(d))

	// 需要登录
	authed := r.Group("/", middleware.RequireLogin(d.Sessions, d.Store, d.Session, d.Log))
	authed.GET("/", dashboard(d.Store))

	authed.GET("/products", listProducts(d.Store))
	authed.GET("/product/add", productForm())
	authed.POST("/product/add", addProduct(d.Store, d.Log))
	authed.GET("/product/edit/:id", editProductPage(d.Store))
	authed.POST("/product/edit/:id", editProduct(d.Store, d.Log))
	authed.GET("/product/delete/:id", deleteProduct(d.Store, d.Log))
	authed.POST("/product/delete/:id", deleteProduct(d.Store, d.Log))

	authed.GET("/sales", listSales(d.Store))
	authed.GET("/sale/add", saleForm(d.Store))
	authed.POST("/sale/add", addSale(d))
	return nil
}

// healthz 检查数据库连接是否可用。
func healthz(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := s.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": 503, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
	}
}

// dashboard 首页：当前员工、全部商品、最近 5 笔销售。
func dashboard(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		products, err := s.ListProducts(ctx)
		if err != nil {
			internalError(c, err)
			return
		}
		recent, err := s.RecentSales(ctx, 5)
		if err != nil {
			internalError(c, err)
			return
		}
		web.View(c, gin.H{
			"employee":     web.CurrentEmployee(c),
			"products":     products,
			"recent_sales": toSaleViews(recent),
		})
	}
}

// parseID 解析路径中的记录 id，非法时按 404 处理。
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		web.Fail(c, http.StatusNotFound, i18n.NotFound)
		return 0, false
	}
	return uint(id), true
}

// internalError 记录到 gin 错误列表（由访问日志输出），返回 500。
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	web.Fail(c, http.StatusInternalServerError, i18n.InternalError)
}
