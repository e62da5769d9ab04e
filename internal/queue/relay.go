package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Stream 条目字段：event_id 便于排查，payload 为完整 JSON 事件。
	streamEventIDField = "event_id"
	streamPayloadField = "payload"

	relayBatchSize  = 16
	relayBlock      = 2 * time.Second
	relayRetryDelay = 300 * time.Millisecond
	relayPublishTTL = 5 * time.Second
)

// Relay 把 outbox Stream 中的销售事件转发到 Kafka。
// 发布成功才 XACK + XDEL；发布失败条目留在 pending 列表，下一轮先重试 pending。
type Relay struct {
	rdb  *rd.Client
	next Publisher
	log  *logrus.Logger

	stream   string
	group    string
	consumer string

	batch      int64
	block      time.Duration
	retryDelay time.Duration
}

func NewRelay(rdb *rd.Client, next Publisher, stream, group, consumer string, log *logrus.Logger) *Relay {
	return &Relay{
		rdb:        rdb,
		next:       next,
		log:        log,
		stream:     stream,
		group:      group,
		consumer:   consumer,
		batch:      relayBatchSize,
		block:      relayBlock,
		retryDelay: relayRetryDelay,
	}
}

// Run 阻塞转发直到 ctx 取消。
func (r *Relay) Run(ctx context.Context) {
	if err := r.ensureGroup(ctx); err != nil {
		r.log.WithError(err).WithField("stream", r.stream).Error("relay ensure group")
		return
	}

	for ctx.Err() == nil {
		entries, err := r.nextBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.WithError(err).WithField("stream", r.stream).Warn("relay read")
			r.pause(ctx)
			continue
		}
		if err := r.forward(ctx, entries); err != nil {
			r.pause(ctx)
		}
	}
}

// nextBatch 先取本消费者未确认的条目，没有再阻塞等待新条目。
func (r *Relay) nextBatch(ctx context.Context) ([]rd.XMessage, error) {
	pending, err := r.read(ctx, "0", -1)
	if err != nil || len(pending) > 0 {
		return pending, err
	}
	return r.read(ctx, ">", r.block)
}

// forward 按顺序转发，遇到第一条发布失败即停止，保证同一 Stream 内事件不乱序。
func (r *Relay) forward(ctx context.Context, entries []rd.XMessage) error {
	for _, xm := range entries {
		if err := r.processOne(ctx, xm); err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"stream_id": xm.ID,
				"event_id":  xm.Values[streamEventIDField],
			}).Warn("relay publish failed, keep pending")
			return err
		}
	}
	return nil
}

func (r *Relay) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(r.retryDelay):
	}
}

func (r *Relay) ensureGroup(ctx context.Context) error {
	err := r.rdb.XGroupCreateMkStream(ctx, r.stream, r.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// read 读取一批条目；block < 0 表示不阻塞（读取 pending 历史时使用）。
func (r *Relay) read(ctx context.Context, id string, block time.Duration) ([]rd.XMessage, error) {
	res, err := r.rdb.XReadGroup(ctx, &rd.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, id},
		Count:    r.batch,
		Block:    block,
	}).Result()
	if errors.Is(err, rd.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []rd.XMessage
	for _, s := range res {
		out = append(out, s.Messages...)
	}
	return out, nil
}

// processOne 转发单条；无法解析的条目确认后丢弃，避免卡住整个 Stream。
func (r *Relay) processOne(ctx context.Context, xm rd.XMessage) error {
	msg, err := parseSaleEvent(xm.Values)
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"stream_id": xm.ID,
			"event_id":  xm.Values[streamEventIDField],
		}).Warn("relay drop bad entry")
		return r.settle(ctx, xm.ID)
	}

	pubCtx, cancel := context.WithTimeout(ctx, relayPublishTTL)
	defer cancel()
	if err := r.next.Publish(pubCtx, msg); err != nil {
		return fmt.Errorf("publish sale %d: %w", msg.SaleID, err)
	}
	return r.settle(ctx, xm.ID)
}

// settle 确认并删除条目，Stream 里只留下尚未转发的事件。
func (r *Relay) settle(ctx context.Context, id string) error {
	_, err := r.rdb.TxPipelined(ctx, func(p rd.Pipeliner) error {
		p.XAck(ctx, r.stream, r.group, id)
		p.XDel(ctx, r.stream, id)
		return nil
	})
	return err
}

func parseSaleEvent(values map[string]interface{}) (SaleMessage, error) {
	raw, err := getStreamString(values, streamPayloadField)
	if err != nil {
		return SaleMessage{}, err
	}
	var msg SaleMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return SaleMessage{}, fmt.Errorf("invalid payload: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return SaleMessage{}, err
	}
	return msg, nil
}

// getStreamString 取字符串字段；go-redis 读回的值是 string，[]byte 来自直接构造的条目。
func getStreamString(values map[string]interface{}, key string) (string, error) {
	switch v := values[key].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("missing field %s", key)
	default:
		return "", fmt.Errorf("field %s has type %T", key, v)
	}
}
