package middleware

import (
	"context"
	"errors"
	"time"

	"it_store/internal/i18n"
	"it_store/internal/model"
	"it_store/internal/session"
	"it_store/internal/store"
	"it_store/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EmployeeLookup 用于把会话里的用户名解析为员工记录。
type EmployeeLookup interface {
	EmployeeByUsername(ctx context.Context, username string) (*model.Employee, error)
}

// SessionOptions 控制会话 cookie。
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// RequireLogin 受保护页面的访问门：无有效会话则带提示重定向到 /login。
// 每次通过都会把会话与 cookie 的过期时间往后顺延一个 TTL。
func RequireLogin(sessions session.Store, employees EmployeeLookup, opts SessionOptions, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := web.SessionID(c)
		if id == "" {
			denyLogin(c)
			return
		}
		ctx := c.Request.Context()

		sess, err := sessions.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.WithError(err).Error("session lookup failed")
			}
			web.ClearSessionCookie(c, opts.Secure)
			denyLogin(c)
			return
		}

		emp, err := employees.EmployeeByUsername(ctx, sess.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// 会话指向的员工已不存在，当作未登录
				_ = sessions.Delete(ctx, id)
			} else {
				log.WithError(err).Error("session employee lookup failed")
			}
			web.ClearSessionCookie(c, opts.Secure)
			denyLogin(c)
			return
		}

		if err := sessions.Touch(ctx, id); err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.WithError(err).Error("session refresh failed")
			}
			web.ClearSessionCookie(c, opts.Secure)
			denyLogin(c)
			return
		}
		web.SetSessionCookie(c, id, opts.TTL, opts.Secure)
		web.SetCurrent(c, emp, id)
		c.Next()
	}
}

func denyLogin(c *gin.Context) {
	web.Redirect(c, web.KindError, i18n.LoginRequired, "/login")
	c.Abort()
}
