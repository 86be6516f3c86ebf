package model

import "time"

// GenerationLog 生成调用记录模型
// 仅作观测用途，写入失败不影响主流程
type GenerationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Task      string    `json:"task" gorm:"size:50;index"` // tutor_answer | artifact_plan | artifact_fill | quiz_generate
	Scope     string    `json:"scope" gorm:"size:128;index"`
	Cached    bool      `json:"cached"`
	Success   bool      `json:"success"`
	Latency   int64     `json:"latency"` // 毫秒
	ErrorMsg  string    `json:"error_msg" gorm:"type:text"`
}

// TableName 指定表名
func (GenerationLog) TableName() string {
	return "generation_logs"
}
