package model

import "time"

// 题目类型
const (
	QuestionTypeSingle      = "single"      // 单选题
	QuestionTypeTrueFalse   = "truefalse"   // 判断题
	QuestionTypeText        = "text"        // 简答题
	QuestionTypeMultiSelect = "multiselect" // 多选题
	QuestionTypePairing     = "pairing"     // 配对题
)

// QuizSet 测验集模型
type QuizSet struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Scope     string    `json:"scope" gorm:"size:128;index"`
	Title     string    `json:"title" gorm:"size:255"`
	Tier      string    `json:"tier" gorm:"size:20"` // 难度档位: basic | standard | advanced
}

// TableName 指定表名
func (QuizSet) TableName() string {
	return "quiz_sets"
}

// Question 题目模型
// 生成时一次性创建，此后不可变
type Question struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	CreatedAt     time.Time `json:"created_at"`
	QuizSetID     string    `json:"quiz_set_id" gorm:"size:36;index"`
	Type          string    `json:"type" gorm:"size:20;not null"`
	Prompt        string    `json:"prompt" gorm:"type:text"`
	Options       string    `json:"options" gorm:"type:text"`        // JSON 数组（选择类题目）
	CorrectAnswer string    `json:"correct_answer" gorm:"type:text"` // 编码方式随题目类型而定
	Explanation   string    `json:"explanation" gorm:"type:text"`
}

// TableName 指定表名
func (Question) TableName() string {
	return "questions"
}

// Submission 答题记录模型
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	QuizSetID    string    `json:"quiz_set_id" gorm:"size:36;index"`
	Answers      string    `json:"answers" gorm:"type:text"` // JSON map: 题目ID -> 提交答案
	Score        float64   `json:"score"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
}

// TableName 指定表名
func (Submission) TableName() string {
	return "submissions"
}
