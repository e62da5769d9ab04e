package session

import (
	"context"
	"time"

	rediskey "it_store/pkg/redis"

	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
)

// RedisStore 把会话存为 Redis hash，TTL 即会话有效期，多实例共享。
type RedisStore struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewRedisStore(rdb *rd.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Create(ctx context.Context, username string) (Session, error) {
	st := rediskey.SessionState{
		SessionID: uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := rediskey.PutSessionState(ctx, r.rdb, st, r.ttl); err != nil {
		return Session{}, err
	}
	return Session{ID: st.SessionID, Username: st.Username, CreatedAt: st.CreatedAt}, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	st, found, err := rediskey.GetSessionState(ctx, r.rdb, id)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, ErrNotFound
	}
	return Session{ID: st.SessionID, Username: st.Username, CreatedAt: st.CreatedAt}, nil
}

func (r *RedisStore) Touch(ctx context.Context, id string) error {
	ok, err := rediskey.RefreshSessionTTL(ctx, r.rdb, id, r.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return rediskey.DeleteSessionState(ctx, r.rdb, id)
}
