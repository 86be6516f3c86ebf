package memory

import (
	"context"
	"math"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/embedding"
	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// Embedder 向量嵌入接口（避免循环依赖）
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	GetModel() string
}

// Config 语义缓存配置
type Config struct {
	Enabled             bool    // 是否启用语义缓存
	SimilarityThreshold float64 // 相似度阈值，默认 0.78
	MaxCandidates       int     // 单 scope 最大候选数量
}

// Cache 语义答案缓存
// 以 scope 为分区键做线性扫描的余弦相似度匹配，所有失败路径都退化为未命中
type Cache struct {
	db       *gorm.DB
	embedder Embedder
	config   *Config
}

// NewCache 创建语义缓存
func NewCache(db *gorm.DB, embedder Embedder, config *Config) *Cache {
	if config.SimilarityThreshold <= 0 {
		config.SimilarityThreshold = 0.78
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 200
	}

	return &Cache{
		db:       db,
		embedder: embedder,
		config:   config,
	}
}

// EntryWithScore 带相似度分数的缓存条目
type EntryWithScore struct {
	*model.AnswerCache
	Score float64
}

// Lookup 语义缓存查询
// 返回命中的答案、本次计算的问题向量、是否命中
// 向量在未命中时仍然返回，供生成成功后回写缓存复用
func (c *Cache) Lookup(ctx context.Context, scope, question string) (string, []float64, bool) {
	if c.config == nil || !c.config.Enabled || c.embedder == nil {
		return "", nil, false
	}

	// 1. 生成问题向量，失败则视为未命中（fail open）
	questionVec, err := c.embedder.Embed(ctx, question)
	if err != nil {
		logx.Warn("Embedding failed, skip semantic cache: %v", err)
		return "", nil, false
	}

	// 2. 加载该 scope 下的候选缓存（带向量）
	candidates, err := c.loadCandidates(scope, c.config.MaxCandidates)
	if err != nil {
		logx.Warn("Failed to load cache candidates: %v", err)
		return "", questionVec, false
	}

	if len(candidates) == 0 {
		return "", questionVec, false
	}

	// 3. 计算相似度，找最佳匹配
	var bestMatch *EntryWithScore
	for _, candidate := range candidates {
		// 解析缓存的向量
		cachedVec, err := embedding.JSONToVector(candidate.Embedding)
		if err != nil || cachedVec == nil {
			continue
		}

		// 计算余弦相似度（维度不匹配时得 0）
		similarity := CosineSimilarity(questionVec, cachedVec)
		if bestMatch == nil || similarity > bestMatch.Score {
			bestMatch = &EntryWithScore{
				AnswerCache: candidate,
				Score:       similarity,
			}
		}
	}

	// 4. 阈值判定
	if bestMatch == nil || bestMatch.Score < c.config.SimilarityThreshold {
		return "", questionVec, false
	}

	// 截取问题前20个字符用于日志显示
	displayQuestion := bestMatch.Question
	if len(displayQuestion) > 20 {
		displayQuestion = displayQuestion[:20] + "..."
	}
	logx.Info("✅ Semantic cache hit: scope=%s, similarity=%.3f, cached_question=%s",
		scope, bestMatch.Score, displayQuestion)

	// 异步更新命中统计（last-writer-wins，统计字段仅作参考）
	go c.incrementHit(bestMatch.ID)

	return bestMatch.Answer, questionVec, true
}

// Store 写入缓存条目
// 仅在真实生成之后调用；调用方应记录并吞掉错误，缓存写入永不阻断主请求
func (c *Cache) Store(scope, question string, questionVec []float64, answer string) error {
	if c.config == nil || !c.config.Enabled {
		return nil
	}

	vecJSON, err := embedding.VectorToJSON(questionVec)
	if err != nil {
		return err
	}

	entry := &model.AnswerCache{
		Scope:          scope,
		Question:       question,
		Answer:         answer,
		Embedding:      vecJSON,
		EmbeddingModel: c.embedder.GetModel(),
		HitCount:       0,
		LastUsedAt:     time.Now(),
	}

	if err := c.db.Create(entry).Error; err != nil {
		return err
	}

	logx.Debug("✅ Answer cache saved: scope=%s, id=%d", scope, entry.ID)
	return nil
}

// loadCandidates 加载候选缓存（只加载有 embedding 的记录）
func (c *Cache) loadCandidates(scope string, limit int) ([]*model.AnswerCache, error) {
	var caches []*model.AnswerCache

	query := c.db.Where("scope = ? AND embedding IS NOT NULL AND embedding != ''", scope).
		Order("hit_count DESC, updated_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&caches).Error; err != nil {
		return nil, err
	}

	return caches, nil
}

// incrementHit 增加缓存命中次数（异步）
func (c *Cache) incrementHit(id uint) {
	c.db.Model(&model.AnswerCache{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"hit_count":    gorm.Expr("hit_count + 1"),
			"last_used_at": time.Now(),
		})
}

// CosineSimilarity 计算余弦相似度
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
