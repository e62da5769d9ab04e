package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SESSION_TTL_HOUR", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.HTTPAddr)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.RedisEnabled())
	require.False(t, cfg.KafkaEnabled())
	require.False(t, cfg.OutboxEnabled())
	require.Equal(t, 10, cfg.LoginRateLimit)
	require.Equal(t, time.Minute, cfg.LoginRateWindow)
	require.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("SESSION_TTL_HOUR", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.1.0.0/16")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, []string{"10.0.0.1", "10.1.0.0/16"}, cfg.TrustedProxies)
	require.False(t, cfg.OutboxEnabled())
}

func TestOutboxNeedsRedisAndKafka(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.OutboxEnabled())
	require.Equal(t, "it_store:sale_events", cfg.SaleEventStream)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SESSION_TTL_HOUR":      "0",
		"LOGIN_RATE_LIMIT":      "abc",
		"LOGIN_RATE_WINDOW_SEC": "-1",
		"COOKIE_SECURE":         "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
