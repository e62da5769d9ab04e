package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"it_store/internal/i18n"
	"it_store/internal/web"
	rediskey "it_store/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// luaRateLimit：Redis 滑动窗口限流 Lua 脚本（原子操作）
// KEYS[1]=限流key，ARGV[1]=当前时间戳，ARGV[2]=窗口开始时间戳，ARGV[3]=窗口秒数，ARGV[4]=成员，ARGV[5]=上限
// 返回：当前窗口内的请求数（超限返回 -1）
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// RedisLoginRateLimit 按客户端 IP 限制登录尝试次数，多实例共享计数。
// Redis 出错时放行（降级），只记日志。
func RedisLoginRateLimit(rdb *rd.Client, limit int, window time.Duration, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rediskey.LoginRateLimitKey(c.ClientIP())

		now := time.Now()
		windowSec := int64(window.Seconds())
		windowStart := now.Unix() - windowSec
		member := fmt.Sprintf("%d-%d", now.Unix(), now.UnixNano())

		res, err := rdb.Eval(c.Request.Context(), luaRateLimit, []string{key},
			now.Unix(), windowStart, windowSec, member, limit).Int()
		if err != nil {
			log.WithError(err).Warn("login rate limit unavailable, allowing request")
			c.Next()
			return
		}
		if res < 0 {
			tooManyAttempts(c, log)
			return
		}
		c.Next()
	}
}

// LocalLoginRateLimit 进程内令牌桶限流，未配置 Redis 时使用。
// 每个 IP 在 window 内最多 limit 次，令牌匀速回填。
func LocalLoginRateLimit(limit int, window time.Duration, log *logrus.Logger) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	every := rate.Every(window / time.Duration(limit))

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		l, ok := limiters[ip]
		if !ok {
			// 简单防止 map 无限增长
			if len(limiters) > 10000 {
				limiters = make(map[string]*rate.Limiter)
			}
			l = rate.NewLimiter(every, limit)
			limiters[ip] = l
		}
		mu.Unlock()

		if !l.Allow() {
			tooManyAttempts(c, log)
			return
		}
		c.Next()
	}
}

func tooManyAttempts(c *gin.Context, log *logrus.Logger) {
	log.WithFields(logrus.Fields{
		"ip":   c.ClientIP(),
		"path": c.Request.URL.Path,
	}).Warn("login rate limit exceeded")
	web.Fail(c, http.StatusTooManyRequests, i18n.TooManyAttempts)
}
