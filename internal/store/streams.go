package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// PublishJSONToStream 发布 JSON 消息到 Redis Streams
// 下游消费者（通知网关等）用 XREAD 订阅；摄取侧只负责追加。
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream string, data interface{}) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
}

// RedisStreamPublisher 绑定单个 stream 的发布器
type RedisStreamPublisher struct {
	c      *redis.Client
	stream string
}

func NewRedisStreamPublisher(c *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{c: c, stream: stream}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, data interface{}) error {
	_, err := PublishJSONToStream(ctx, p.c, p.stream, data)
	return err
}
