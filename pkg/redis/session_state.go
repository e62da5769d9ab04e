package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// SessionState 对应 Redis 内的会话结构。
type SessionState struct {
	SessionID string
	Username  string
	CreatedAt time.Time
}

// GetSessionState 查询会话。found=false 表示 key 不存在或已过期。
func GetSessionState(ctx context.Context, rdb *rd.Client, sessionID string) (SessionState, bool, error) {
	m, err := rdb.HGetAll(ctx, SessionKey(sessionID)).Result()
	if err != nil {
		return SessionState{}, false, err
	}
	if len(m) == 0 || m["username"] == "" {
		return SessionState{}, false, nil
	}

	out := SessionState{SessionID: sessionID, Username: m["username"]}
	if ts, err := time.Parse(time.RFC3339Nano, m["created_at"]); err == nil {
		out.CreatedAt = ts
	}
	return out, true, nil
}

// PutSessionState 写入会话并设置 TTL。
func PutSessionState(ctx context.Context, rdb *rd.Client, st SessionState, ttl time.Duration) error {
	key := SessionKey(st.SessionID)
	pipe := rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"username", st.Username,
		"created_at", st.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// RefreshSessionTTL 滑动续期。返回 false 表示会话已不存在。
func RefreshSessionTTL(ctx context.Context, rdb *rd.Client, sessionID string, ttl time.Duration) (bool, error) {
	return rdb.Expire(ctx, SessionKey(sessionID), ttl).Result()
}

// DeleteSessionState 删除会话，不存在时不报错。
func DeleteSessionState(ctx context.Context, rdb *rd.Client, sessionID string) error {
	return rdb.Del(ctx, SessionKey(sessionID)).Err()
}
