package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	// RedisAddr 为空时 session 与登录限流退回进程内实现。
	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）、Topic、消费者组；Brokers 为空表示不投递销售事件。
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Redis Stream outbox：Redis 与 Kafka 都配置时，销售事件先入流，再由 Relay 转发 Kafka
	SaleEventStream   string
	SaleEventGroup    string
	SaleEventConsumer string

	SessionTTL   time.Duration
	CookieSecure bool

	// TrustedProxies 为空时不信任任何代理头，ClientIP 取 TCP 对端地址。
	TrustedProxies []string

	// 登录接口限流（按客户端 IP）
	LoginRateLimit  int
	LoginRateWindow time.Duration

	LogLevel string
}

// KafkaEnabled 表示是否配置了 Kafka。
func (c AppConfig) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// RedisEnabled 表示是否配置了 Redis。
func (c AppConfig) RedisEnabled() bool { return c.RedisAddr != "" }

// OutboxEnabled 表示销售事件是否经由 Redis Stream 中转。
func (c AppConfig) OutboxEnabled() bool { return c.RedisEnabled() && c.KafkaEnabled() }

// Load 读取并校验配置，缺失时使用默认值。存在 .env 时先加载。
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		HTTPAddr:          getEnv("HTTP_ADDR", ":5000"),
		DBPath:            getEnv("DB_PATH", "instance/employee.db"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           0,
		KafkaBrokers:      splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "it-store-sales"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "it-store-stock-movements"),
		SaleEventStream:   getEnv("SALE_EVENT_STREAM", "it_store:sale_events"),
		SaleEventGroup:    getEnv("SALE_EVENT_GROUP", "it-store-relay-group"),
		SaleEventConsumer: getEnv("SALE_EVENT_CONSUMER", "it-store-relay-1"),
		SessionTTL:        24 * time.Hour,
		LoginRateLimit:    10,
		LoginRateWindow:   time.Minute,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	ttlHour, err := getEnvInt("SESSION_TTL_HOUR", int(cfg.SessionTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SESSION_TTL_HOUR: %w", err)
	}
	if ttlHour <= 0 {
		return AppConfig{}, fmt.Errorf("SESSION_TTL_HOUR must be > 0")
	}
	cfg.SessionTTL = time.Duration(ttlHour) * time.Hour

	rateLimit, err := getEnvInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("LOGIN_RATE_LIMIT must be > 0")
	}
	cfg.LoginRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("LOGIN_RATE_WINDOW_SEC", int(cfg.LoginRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOGIN_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("LOGIN_RATE_WINDOW_SEC must be > 0")
	}
	cfg.LoginRateWindow = time.Duration(rateWindowSec) * time.Second

	secure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}
	cfg.CookieSecure = secure

	if cfg.DBPath == "" {
		return AppConfig{}, fmt.Errorf("DB_PATH must not be empty")
	}
	if cfg.KafkaEnabled() {
		if cfg.KafkaTopic == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
		}
		if cfg.KafkaGroupID == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
		}
	}
	if cfg.OutboxEnabled() {
		if cfg.SaleEventStream == "" {
			return AppConfig{}, fmt.Errorf("SALE_EVENT_STREAM must not be empty")
		}
		if cfg.SaleEventGroup == "" {
			return AppConfig{}, fmt.Errorf("SALE_EVENT_GROUP must not be empty")
		}
		if cfg.SaleEventConsumer == "" {
			return AppConfig{}, fmt.Errorf("SALE_EVENT_CONSUMER must not be empty")
		}
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
