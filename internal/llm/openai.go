package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient OpenAI 兼容的客户端
type OpenAIClient struct {
	config *Config
	client *openai.Client
}

// NewOpenAIClient 创建新的 OpenAI 客户端
func NewOpenAIClient(config *Config) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)

	// 配置 BaseURL
	if config.BaseURL != "" {
		// 直接使用配置的 BaseURL,不自动添加 /v1
		// 因为不同的 API 提供商可能有不同的路径格式
		// 例如:OpenAI 使用 /v1,智普 AI 使用 /api/paas/v4
		clientConfig.BaseURL = config.BaseURL
		logx.Debug("OpenAI client BaseURL: %s", config.BaseURL)
	}

	// 配置 HTTP 客户端
	// 关键:禁用 HTTP/2,强制使用 HTTP/1.1 以避免 INTERNAL_ERROR
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		// 禁用 HTTP/2 - 设置空的 TLSNextProto map 会阻止 HTTP/2
		TLSNextProto: make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
	}

	clientConfig.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   600 * time.Second,
	}

	client := openai.NewClientWithConfig(clientConfig)

	logx.Info("OpenAI client initialized, model %s", config.Model)

	return &OpenAIClient{
		config: config,
		client: client,
	}
}

// Generate 执行一次生成调用(非流式)
func (c *OpenAIClient) Generate(ctx context.Context, task string, messages []Message) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    openaiMessages,
		Temperature: temperatureForTask(task),
		Stream:      false,
	}

	logx.Debug("Calling LLM, task %s, messages %d", task, len(messages))
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logx.Error("LLM call failed, task %s: %v", task, err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logx.Debug("LLM call completed, task %s, duration %s, length %d",
		task, time.Since(start), len(content))

	return content, nil
}

// temperatureForTask 按任务选择采样温度
// 规划与填充要求结构化输出，温度压低；答疑允许更自然的表达
func temperatureForTask(task string) float32 {
	switch task {
	case TaskArtifactPlan, TaskArtifactFill:
		return 0.3
	default:
		return 0.7
	}
}
