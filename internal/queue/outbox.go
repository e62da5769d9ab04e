package queue

import (
	"context"
	"encoding/json"

	rd "github.com/redis/go-redis/v9"
)

// outboxMaxLen 限制 Stream 长度（近似裁剪），Relay 长时间不可用时防止无限增长。
const outboxMaxLen = 100000

// OutboxPublisher 把销售事件写入 Redis Stream，由 Relay 异步转发 Kafka。
// 请求路径上只依赖 Redis，Kafka 短暂不可用不会丢事件。
type OutboxPublisher struct {
	rdb    *rd.Client
	stream string
}

func NewOutboxPublisher(rdb *rd.Client, stream string) *OutboxPublisher {
	return &OutboxPublisher{rdb: rdb, stream: stream}
}

func (o *OutboxPublisher) Publish(ctx context.Context, msg SaleMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		MaxLen: outboxMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			streamEventIDField: msg.EventID,
			streamPayloadField: string(b),
		},
	}).Err()
}

// Close 无需释放资源，Redis 客户端由调用方管理。
func (o *OutboxPublisher) Close() error { return nil }
