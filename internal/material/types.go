package material

// Document 检索结果文档
type Document struct {
	ID        uint    `json:"id"`
	Scope     string  `json:"scope"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"` // 相关性评分
	Enabled   bool    `json:"enabled"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// AddMaterialRequest 添加学习资料请求
type AddMaterialRequest struct {
	Scope   string `json:"scope" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}
