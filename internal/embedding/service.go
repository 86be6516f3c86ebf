package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// Service 向量嵌入服务
type Service struct {
	embedder embedding.Embedder
	model    string      // 当前使用的模型标识
	cache    *RedisCache // 可选，缓存 embedding 结果
}

// Config Embedding 配置
type Config struct {
	APIKey  string
	BaseURL string
	Model   string // 如 "text-embedding-3-small"
}

// NewService 创建 Embedding 服务（复用 Eino）
func NewService(cfg *Config, redis *RedisCache) (*Service, error) {
	embedder, err := openai.NewEmbedder(context.Background(), &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &Service{
		embedder: embedder,
		model:    cfg.Model,
		cache:    redis,
	}, nil
}

// Embed 获取文本的向量表示
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	// 1. 先检查 Redis 缓存
	if s.cache != nil {
		cacheKey := s.calculateCacheKey(text)
		cached, err := s.cache.GetEmbedding(cacheKey)
		if err == nil && cached != nil {
			logx.Debug("Embedding cache hit: key=%s", cacheKey[:16])
			return cached, nil
		}
	}

	// 2. 调用 Eino Embedder
	vectors, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	result := vectors[0]

	// 3. 缓存结果
	if s.cache != nil {
		cacheKey := s.calculateCacheKey(text)
		if err := s.cache.SetEmbedding(cacheKey, result); err != nil {
			logx.Warn("Failed to cache embedding: %v", err)
		}
	}

	return result, nil
}

// GetModel 获取当前模型标识
func (s *Service) GetModel() string {
	return s.model
}

// calculateCacheKey 计算缓存键
func (s *Service) calculateCacheKey(text string) string {
	hash := sha256.Sum256([]byte(s.model + ":" + text))
	return fmt.Sprintf("emb:%x", hash[:16])
}

// VectorToJSON 将向量转换为 JSON 字符串
func VectorToJSON(vector []float64) (string, error) {
	data, err := json.Marshal(vector)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSONToVector 将 JSON 字符串转换为向量
func JSONToVector(jsonStr string) ([]float64, error) {
	if jsonStr == "" {
		return nil, nil
	}
	var vector []float64
	err := json.Unmarshal([]byte(jsonStr), &vector)
	if err != nil {
		return nil, err
	}
	return vector, nil
}
