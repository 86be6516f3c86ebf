package model

import "time"

// 制品类型
const (
	ArtifactKindDeck  = "deck"  // 幻灯片
	ArtifactKindPaper = "paper" // 试卷
)

// Artifact 生成制品模型（幻灯片/试卷）
type Artifact struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Scope        string    `json:"scope" gorm:"size:128;index"`
	Kind         string    `json:"kind" gorm:"size:20"` // deck | paper
	Topic        string    `json:"topic" gorm:"size:255"`
	Tier         string    `json:"tier" gorm:"size:20"`
	PlannedUnits int       `json:"planned_units"` // 规划阶段产出的单元数
	FilledUnits  int       `json:"filled_units"`  // 实际填充成功的单元数
}

// TableName 指定表名
func (Artifact) TableName() string {
	return "artifacts"
}

// ArtifactUnit 制品单元模型
// Index 在规划时一次性分配，填充阶段不得重排或重新编号
type ArtifactUnit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ArtifactID string    `json:"artifact_id" gorm:"size:36;index"`
	UnitIndex  int       `json:"index" gorm:"column:unit_index"`
	Kind       string    `json:"kind" gorm:"size:32"`
	Title      string    `json:"title" gorm:"size:255"`
	Content    string    `json:"content" gorm:"type:text"`
}

// TableName 指定表名
func (ArtifactUnit) TableName() string {
	return "artifact_units"
}
