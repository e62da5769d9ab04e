package router

import (
	"errors"

	"it_store/internal/auth"
	"it_store/internal/i18n"
	"it_store/internal/store"
	"it_store/internal/web"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type registerRequest struct {
	Username        string `form:"username" json:"username"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Fullname        string `form:"fullname" json:"fullname"`
	Position        string `form:"position" json:"position"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
}

func loginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		web.View(c, gin.H{"form": "login", "fields": []string{"username", "password"}})
	}
}

// login 校验成功后建立会话并跳转首页；失败统一提示「用户名或密码错误」。
func login(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBind(&req); err != nil {
			web.Redirect(c, web.KindError, i18n.InvalidCredentials, "/login")
			return
		}

		ctx := c.Request.Context()
		emp, err := d.Auth.Authenticate(ctx, req.Username, req.Password)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				_ = c.Error(err)
				web.Redirect(c, web.KindError, i18n.InternalError, "/login")
				return
			}
			d.Log.WithField("username", req.Username).Info("login failed")
			web.Redirect(c, web.KindError, i18n.InvalidCredentials, "/login")
			return
		}

		// 旧会话（如有）作废，避免会话固定
		if old := web.SessionID(c); old != "" {
			_ = d.Sessions.Delete(ctx, old)
		}
		sess, err := d.Sessions.Create(ctx, emp.Username)
		if err != nil {
			_ = c.Error(err)
			web.Redirect(c, web.KindError, i18n.InternalError, "/login")
			return
		}
		web.SetSessionCookie(c, sess.ID, d.Session.TTL, d.Session.Secure)
		d.Log.WithField("username", emp.Username).Info("login succeeded")
		web.Redirect(c, web.KindSuccess, i18n.LoginSuccess, "/")
	}
}

func registerPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		web.View(c, gin.H{"form": "register", "fields": []string{
			"username", "password", "confirm_password", "fullname", "position", "email", "phone",
		}})
	}
}

// register 注册员工，任何校验失败都带提示跳回注册页。
func register(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBind(&req); err != nil {
			web.Redirect(c, web.KindError, i18n.MissingField, "/register")
			return
		}

		emp, err := d.Auth.Register(c.Request.Context(), auth.RegisterInput{
			Username:        req.Username,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Fullname:        req.Fullname,
			Position:        req.Position,
			Email:           req.Email,
			Phone:           req.Phone,
		})
		if err != nil {
			key, known := registerErrorKey(err)
			if !known {
				_ = c.Error(err)
			}
			web.Redirect(c, web.KindError, key, "/register")
			return
		}

		d.Log.WithField("username", emp.Username).Info("employee registered")
		web.Redirect(c, web.KindSuccess, i18n.RegisterSuccess, "/login")
	}
}

func registerErrorKey(err error) (i18n.Key, bool) {
	switch {
	case errors.Is(err, auth.ErrMissingField):
		return i18n.MissingField, true
	case errors.Is(err, auth.ErrPasswordTooShort):
		return i18n.PasswordTooShort, true
	case errors.Is(err, auth.ErrPasswordNoLower):
		return i18n.PasswordNoLower, true
	case errors.Is(err, auth.ErrPasswordNoUpper):
		return i18n.PasswordNoUpper, true
	case errors.Is(err, auth.ErrPasswordNoDigit):
		return i18n.PasswordNoDigit, true
	case errors.Is(err, auth.ErrPasswordMismatch):
		return i18n.PasswordMismatch, true
	case errors.Is(err, store.ErrUsernameTaken):
		return i18n.UsernameTaken, true
	case errors.Is(err, store.ErrEmailTaken):
		return i18n.EmailTaken, true
	default:
		return i18n.InternalError, false
	}
}

// logout 清除会话；没有会话时同样跳转登录页。
func logout(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := web.SessionID(c); id != "" {
			if err := d.Sessions.Delete(c.Request.Context(), id); err != nil {
				d.Log.WithError(err).Warn("session delete failed")
			}
		}
		web.ClearSessionCookie(c, d.Session.Secure)
		web.Redirect(c, web.KindSuccess, i18n.LogoutSuccess, "/login")
	}
}
