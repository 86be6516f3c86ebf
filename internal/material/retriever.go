package material

import (
	"context"
	"fmt"
	"math"
	"sort"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/embedding"
	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// EmbeddingService 简化接口（避免循环依赖）
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	GetModel() string
}

// Retriever 学习资料检索器
// 为答疑和制品生成提供与主题相关的资料片段
type Retriever struct {
	db               *gorm.DB
	maxResults       int // 最大返回结果数
	embeddingService EmbeddingService
}

// NewRetriever 创建学习资料检索器
func NewRetriever(db *gorm.DB, maxResults int) *Retriever {
	if maxResults <= 0 {
		maxResults = 3 // 默认返回 3 条
	}

	return &Retriever{
		db:         db,
		maxResults: maxResults,
	}
}

// SetEmbeddingService 设置 Embedding 服务（用于向量检索）
func (r *Retriever) SetEmbeddingService(service EmbeddingService) {
	r.embeddingService = service
	if service != nil {
		logx.Info("✅ Material Retriever: Vector search enabled with model %s", service.GetModel())
	}
}

// Retrieve 检索相关资料
// 优先向量检索，Embedding 不可用或失败时降级为 LIKE 搜索
func (r *Retriever) Retrieve(ctx context.Context, scope, query string) ([]*Document, error) {
	if r.embeddingService != nil {
		docs, err := r.retrieveByVector(ctx, scope, query)
		if err != nil {
			logx.Warn("Vector search failed, falling back to LIKE search: %v", err)
			return r.retrieveByLike(scope, query)
		}
		return docs, nil
	}

	return r.retrieveByLike(scope, query)
}

// retrieveByVector 使用向量检索
func (r *Retriever) retrieveByVector(ctx context.Context, scope, query string) ([]*Document, error) {
	// 1. 生成查询向量
	queryVector, err := r.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	// 2. 从数据库加载该 scope 下所有有 embedding 的资料
	var materials []model.StudyMaterial
	if err := r.db.Where("scope = ? AND enabled = ? AND embedding != ''", scope, true).
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}

	if len(materials) == 0 {
		logx.Warn("No materials with embeddings found in scope %s", scope)
		return []*Document{}, nil
	}

	// 3. 计算相似度并排序
	type scoredMaterial struct {
		material *model.StudyMaterial
		score    float64
	}

	var scored []scoredMaterial
	for i := range materials {
		docVector, err := embedding.JSONToVector(materials[i].Embedding)
		if err != nil || docVector == nil {
			logx.Warn("Failed to parse embedding for material %d: %v", materials[i].ID, err)
			continue
		}

		similarity := cosineSimilarity(queryVector, docVector)
		scored = append(scored, scoredMaterial{
			material: &materials[i],
			score:    similarity,
		})
	}

	// 4. 按相似度降序排序
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// 5. 取前 maxResults 个
	limit := r.maxResults
	if len(scored) < limit {
		limit = len(scored)
	}

	var documents []*Document
	for i := 0; i < limit; i++ {
		m := scored[i].material
		documents = append(documents, &Document{
			ID:      m.ID,
			Scope:   m.Scope,
			Title:   m.Title,
			Content: m.Content,
			Score:   scored[i].score,
			Enabled: m.Enabled,
		})
	}

	logx.Info("Vector search found %d materials (query embedding dim=%d)", len(documents), len(queryVector))
	return documents, nil
}

// retrieveByLike 使用 LIKE 搜索（向量检索不可用时的降级方案）
func (r *Retriever) retrieveByLike(scope, query string) ([]*Document, error) {
	likePattern := "%" + query + "%"

	var materials []model.StudyMaterial
	if err := r.db.Where("scope = ? AND enabled = ? AND (title LIKE ? OR content LIKE ?)",
		scope, true, likePattern, likePattern).
		Limit(r.maxResults).
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("LIKE search failed: %w", err)
	}

	var documents []*Document
	for i := range materials {
		documents = append(documents, &Document{
			ID:      materials[i].ID,
			Scope:   materials[i].Scope,
			Title:   materials[i].Title,
			Content: materials[i].Content,
			Score:   1.0,
			Enabled: materials[i].Enabled,
		})
	}

	logx.Info("LIKE search found %d materials for query: %s", len(documents), query)
	return documents, nil
}

// AddMaterial 添加学习资料
func (r *Retriever) AddMaterial(ctx context.Context, req *AddMaterialRequest) (uint, error) {
	m := &model.StudyMaterial{
		Scope:   req.Scope,
		Title:   req.Title,
		Content: req.Content,
		Enabled: true,
	}

	// 如果 Embedding 可用，生成向量
	if r.embeddingService != nil {
		// 合并标题和内容生成向量
		text := req.Title + "\n\n" + req.Content
		vec, err := r.embeddingService.Embed(ctx, text)
		if err != nil {
			logx.Warn("Failed to generate embedding for material: %v", err)
		} else {
			vecJSON, _ := embedding.VectorToJSON(vec)
			m.Embedding = vecJSON
			m.EmbeddingModel = r.embeddingService.GetModel()
			logx.Debug("Generated embedding for material: model=%s, dim=%d", m.EmbeddingModel, len(vec))
		}
	}

	if err := r.db.Create(m).Error; err != nil {
		return 0, fmt.Errorf("failed to create material: %w", err)
	}

	logx.Info("✅ Added study material: %s (ID: %d, scope: %s, has_embedding=%v)",
		m.Title, m.ID, m.Scope, m.Embedding != "")
	return m.ID, nil
}

// ListMaterials 列出学习资料
func (r *Retriever) ListMaterials(scope string) ([]*Document, error) {
	query := r.db.Model(&model.StudyMaterial{})

	if scope != "" {
		query = query.Where("scope = ?", scope)
	}

	var materials []model.StudyMaterial
	if err := query.Order("created_at DESC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	var documents []*Document
	for i := range materials {
		documents = append(documents, &Document{
			ID:        materials[i].ID,
			Scope:     materials[i].Scope,
			Title:     materials[i].Title,
			Content:   materials[i].Content,
			Enabled:   materials[i].Enabled,
			CreatedAt: materials[i].CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt: materials[i].UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return documents, nil
}

// DeleteMaterial 删除学习资料
func (r *Retriever) DeleteMaterial(id uint) error {
	result := r.db.Delete(&model.StudyMaterial{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete material: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("material not found: %d", id)
	}

	logx.Info("✅ Deleted study material: ID %d", id)
	return nil
}

// cosineSimilarity 计算两个向量的余弦相似度
func cosineSimilarity(a, b []float64) float64 {
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
