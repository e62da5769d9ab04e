// Package web 放置 handler 与中间件共用的 cookie、flash 与响应封装。
package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"it_store/internal/i18n"
	"it_store/internal/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	SessionCookie = "it_store_session"
	FlashCookie   = "it_store_flash"

	// flash 只需撑过一次重定向。
	flashMaxAge = 60

	ctxEmployee     = "it_store.employee"
	ctxSessionID    = "it_store.session_id"
	ctxCookieSecure = "it_store.cookie_secure"
)

const (
	KindSuccess = "success"
	KindError   = "error"
)

// Flash 是一次重定向携带的提示。
type Flash struct {
	Kind string   `json:"kind"`
	Key  i18n.Key `json:"key"`
}

// Lang 按请求的 Accept-Language 选择提示语言。
func Lang(c *gin.Context) language.Tag {
	return i18n.Negotiate(c.GetHeader("Accept-Language"))
}

// T 翻译成当前请求的语言。
func T(c *gin.Context, key i18n.Key) string {
	return i18n.T(Lang(c), key)
}

// SessionID 读取会话 cookie，没有则返回空串。
func SessionID(c *gin.Context) string {
	v, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return v
}

// SetSessionCookie 写入（或续期）会话 cookie。
func SetSessionCookie(c *gin.Context, id string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

// CookieOptions 记录 cookie 是否仅限 HTTPS，flash cookie 与会话 cookie 保持一致。
func CookieOptions(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxCookieSecure, secure)
		c.Next()
	}
}

func cookieSecure(c *gin.Context) bool { return c.GetBool(ctxCookieSecure) }

// SetFlash 设置下一次页面要展示的提示。
func SetFlash(c *gin.Context, kind string, key i18n.Key) {
	b, _ := json.Marshal([]Flash{{Kind: kind, Key: key}})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, base64.RawURLEncoding.EncodeToString(b), flashMaxAge, "/", "", cookieSecure(c), true)
}

// PopFlashes 取出并清除待展示的提示，cookie 损坏时当作没有。
func PopFlashes(c *gin.Context) []Flash {
	v, err := c.Cookie(FlashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, "", -1, "/", "", cookieSecure(c), true)

	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// Redirect 带一条 flash 重定向（303，表单提交后改为 GET）。
func Redirect(c *gin.Context, kind string, key i18n.Key, location string) {
	SetFlash(c, kind, key)
	c.Redirect(http.StatusSeeOther, location)
}

// View 返回页面数据，并附带已翻译的 flash。
func View(c *gin.Context, data any) {
	tag := Lang(c)
	flashes := make([]gin.H, 0)
	for _, f := range PopFlashes(c) {
		flashes = append(flashes, gin.H{"kind": f.Kind, "key": f.Key, "msg": i18n.T(tag, f.Key)})
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": data, "flashes": flashes})
}

// Fail 直接返回错误（如 404），不经过重定向。
func Fail(c *gin.Context, status int, key i18n.Key) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "key": key, "msg": T(c, key)})
}

// SetCurrent 由登录中间件写入当前员工与会话。
func SetCurrent(c *gin.Context, e *model.Employee, sessionID string) {
	c.Set(ctxEmployee, e)
	c.Set(ctxSessionID, sessionID)
}

// CurrentEmployee 返回已登录员工；未经过登录中间件时为 nil。
func CurrentEmployee(c *gin.Context) *model.Employee {
	v, ok := c.Get(ctxEmployee)
	if !ok {
		return nil
	}
	e, _ := v.(*model.Employee)
	return e
}
