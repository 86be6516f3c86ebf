package model

import "time"

// StudyMaterial 学习资料模型
// 上传的课件/讲义文本，供答疑和制品生成时检索引用
type StudyMaterial struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Scope          string    `json:"scope" gorm:"size:128;index"`
	Title          string    `json:"title" gorm:"size:255"`
	Content        string    `json:"content" gorm:"type:text"`
	Enabled        bool      `json:"enabled" gorm:"default:true;index"`
	Embedding      string    `json:"embedding" gorm:"type:text"` // JSON 格式的向量 (用于语义搜索)
	EmbeddingModel string    `json:"embedding_model" gorm:"size:64"`
}

// TableName 指定表名
func (StudyMaterial) TableName() string {
	return "study_materials"
}
