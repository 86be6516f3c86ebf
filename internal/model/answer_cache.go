package model

import "time"

// AnswerCache 语义答案缓存模型
// 按 scope（学科/主题）分区，跨 scope 永不命中
type AnswerCache struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Scope          string    `json:"scope" gorm:"size:128;not null;index"` // 缓存分区键
	Question       string    `json:"question" gorm:"type:text;not null"`
	Answer         string    `json:"answer" gorm:"type:text"`
	Embedding      string    `json:"embedding" gorm:"type:text"` // JSON 格式的问题向量
	EmbeddingModel string    `json:"embedding_model" gorm:"size:64"`
	HitCount       int       `json:"hit_count" gorm:"default:0;index"`
	LastUsedAt     time.Time `json:"last_used_at"`
}

// TableName 指定表名
func (AnswerCache) TableName() string {
	return "answer_cache"
}
