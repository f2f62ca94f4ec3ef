package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss key 不存在或已过期
var ErrMiss = errors.New("cache miss")

// 单次 SCAN 取回的 key 数上限
const scanBatchSize = 200

// KV Redis 之上的小门面。当前两个 key 命名空间：
//
//	buzzer_control/{deviceId} —— 蜂鸣器指令状态，无 TTL
//	vital:latest:{subjectId}  —— 最新读数缓存，带 TTL
//
// ScanKeys 支撑全量设备列举（buzzer_control/*）。
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV { return &RedisKV{client: client} }

var _ KV = (*RedisKV)(nil)

func (kv *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := kv.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (kv *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return kv.client.Set(ctx, key, value, ttl).Err()
}

// ScanKeys 游标遍历匹配 pattern 的全部 key（不用 KEYS，避免阻塞 Redis）
func (kv *RedisKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := kv.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
