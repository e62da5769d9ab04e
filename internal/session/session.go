// Package session 保存登录会话：cookie 里只放随机 ID，用户名等状态留在服务端。
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session 是一次登录产生的服务端状态。
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Store 会话存储。Get 与 Touch 对过期会话返回 ErrNotFound；
// Touch 把过期时间从当前时刻起重新延长一个 TTL。
type Store interface {
	Create(ctx context.Context, username string) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
