package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache Redis 缓存层
// 仅用于缓存 embedding 结果，避免对相同文本重复计费
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// GetEmbedding 读取缓存的向量
func (r *RedisCache) GetEmbedding(key string) ([]float64, error) {
	ctx := context.Background()

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // 未命中
	}
	if err != nil {
		return nil, err
	}

	var vector []float64
	if err := json.Unmarshal([]byte(data), &vector); err != nil {
		return nil, err
	}

	return vector, nil
}

// SetEmbedding 写入向量缓存
func (r *RedisCache) SetEmbedding(key string, vector []float64) error {
	ctx := context.Background()

	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// Close 关闭 Redis 连接
func (r *RedisCache) Close() error {
	return r.client.Close()
}
