package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"it_store/internal/auth"
	"it_store/internal/config"
	"it_store/internal/logging"
	"it_store/internal/metrics"
	"it_store/internal/middleware"
	"it_store/internal/queue"
	"it_store/internal/router"
	"it_store/internal/session"
	"it_store/internal/store"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 连接 SQLite，自动建目录与表
	db, err := store.Open(cfg.DBPath, log)
	if err != nil {
		log.WithError(err).Fatal("db open")
	}
	st := store.New(db)

	deps := router.Deps{
		Store:   st,
		Auth:    auth.NewService(st, 0),
		Metrics: metrics.New(),
		Log:     log,
		Session: middleware.SessionOptions{TTL: cfg.SessionTTL, Secure: cfg.CookieSecure},

		TrustedProxies: cfg.TrustedProxies,
	}

	// 2. 会话与登录限流：有 Redis 用 Redis，否则退回进程内实现
	var rdb *rd.Client
	if cfg.RedisEnabled() {
		rdb = rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("redis ping")
		}
		deps.Sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		deps.LoginLimiter = middleware.RedisLoginRateLimit(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow, log)
	} else {
		log.Warn("REDIS_ADDR not set, sessions kept in memory")
		deps.Sessions = session.NewMemoryStore(cfg.SessionTTL)
		deps.LoginLimiter = middleware.LocalLoginRateLimit(cfg.LoginRateLimit, cfg.LoginRateWindow, log)
	}

	// 3. 销售事件：有 Redis 时先入 Stream 再由 Relay 转 Kafka，否则直接写 Kafka；
	//    消费者把事件落成库存流水
	var (
		producer *queue.Producer
		wg       sync.WaitGroup
	)
	switch {
	case cfg.OutboxEnabled():
		producer = queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		deps.Events = queue.NewOutboxPublisher(rdb, cfg.SaleEventStream)

		relay := queue.NewRelay(rdb, producer, cfg.SaleEventStream, cfg.SaleEventGroup, cfg.SaleEventConsumer, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx)
		}()
	case cfg.KafkaEnabled():
		producer = queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		deps.Events = producer
	default:
		log.Warn("KAFKA_BROKERS not set, sale events disabled")
		deps.Events = queue.NopPublisher{}
	}
	if cfg.KafkaEnabled() {
		consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, st, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Run(ctx)
			if err := consumer.Close(); err != nil {
				log.WithError(err).Warn("consumer close")
			}
		}()
	}

	r := gin.New()
	if err := router.Setup(r, deps); err != nil {
		log.WithError(err).Fatal("router setup")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}

	// 先停 HTTP 与后台协程，再关生产者，Relay 手上的事件能发完
	cancel()
	wg.Wait()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.WithError(err).Warn("producer close")
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
