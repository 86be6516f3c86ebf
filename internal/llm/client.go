package llm

import "context"

// 任务标签，用于区分不同生成场景的调用与记录
const (
	TaskTutorAnswer  = "tutor_answer"  // 答疑问答
	TaskArtifactPlan = "artifact_plan" // 制品规划
	TaskArtifactFill = "artifact_fill" // 制品批量填充
	TaskQuizGenerate = "quiz_generate" // 测验题目生成
)

// Message 消息结构
type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Gateway LLM 网关接口
// 所有生成调用都是可失败、高延迟的外部 I/O
type Gateway interface {
	Generate(ctx context.Context, task string, messages []Message) (string, error)
}

// Config LLM 配置
type Config struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}
