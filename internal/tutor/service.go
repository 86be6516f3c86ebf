package tutor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
	"github.com/dsd7888/EduNexusAI-sub000/internal/material"
	"github.com/dsd7888/EduNexusAI-sub000/internal/memory"
	"github.com/dsd7888/EduNexusAI-sub000/internal/service"
)

const tutorSystemPrompt = `你是一位耐心的学习辅导老师。
请基于提供的参考资料回答学生的问题：
1. 回答要准确、清晰，适合学生理解
2. 如果参考资料不足以回答，结合你的知识作答，但不要编造资料中不存在的引用
3. 用简洁的结构组织答案，必要时举例说明`

// Service 答疑服务
// 编排一次完整的问答：语义缓存 -> 资料检索 -> LLM 生成 -> 缓存回写
type Service struct {
	cache     *memory.Cache
	gateway   llm.Gateway
	materials *material.Retriever
	logSvc    *service.GenerationLogService
}

// NewService 创建答疑服务
func NewService(cache *memory.Cache, gateway llm.Gateway, materials *material.Retriever, logSvc *service.GenerationLogService) *Service {
	return &Service{
		cache:     cache,
		gateway:   gateway,
		materials: materials,
		logSvc:    logSvc,
	}
}

// AnswerResult 答疑结果
type AnswerResult struct {
	Text   string `json:"text"`
	Cached bool   `json:"cached"`
}

// Answer 回答一个学生问题
// 缓存命中直接返回，未命中走完整生成流程并回写缓存
func (s *Service) Answer(ctx context.Context, scope, question string) (*AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	if strings.TrimSpace(scope) == "" {
		return nil, fmt.Errorf("scope is required")
	}

	start := time.Now()

	// 1. 语义缓存查询（任何缓存故障都退化为未命中，不影响主流程）
	cachedAnswer, questionVec, hit := s.cache.Lookup(ctx, scope, question)
	if hit {
		s.logSvc.Record(&service.LogParams{
			Task:    llm.TaskTutorAnswer,
			Scope:   scope,
			Cached:  true,
			Success: true,
			Latency: time.Since(start).Milliseconds(),
		})
		return &AnswerResult{Text: cachedAnswer, Cached: true}, nil
	}

	// 2. 检索相关学习资料作为上下文
	contextText := s.buildContext(ctx, scope, question)

	// 3. 真实生成
	messages := []llm.Message{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: buildUserPrompt(question, contextText)},
	}

	answer, err := s.gateway.Generate(ctx, llm.TaskTutorAnswer, messages)
	if err != nil {
		s.logSvc.Record(&service.LogParams{
			Task:    llm.TaskTutorAnswer,
			Scope:   scope,
			Success: false,
			Latency: time.Since(start).Milliseconds(),
			Err:     err,
		})
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	// 4. 回写缓存（复用 Lookup 时算好的向量，失败只打日志）
	if questionVec != nil {
		if err := s.cache.Store(scope, question, questionVec, answer); err != nil {
			logx.Warn("Failed to store answer cache: %v", err)
		}
	}

	s.logSvc.Record(&service.LogParams{
		Task:    llm.TaskTutorAnswer,
		Scope:   scope,
		Success: true,
		Latency: time.Since(start).Milliseconds(),
	})

	return &AnswerResult{Text: answer, Cached: false}, nil
}

// buildContext 检索资料并拼装参考上下文
// 检索失败不致命，退化为无资料作答
func (s *Service) buildContext(ctx context.Context, scope, question string) string {
	if s.materials == nil {
		return ""
	}

	docs, err := s.materials.Retrieve(ctx, scope, question)
	if err != nil {
		logx.Warn("Material retrieval failed, answering without context: %v", err)
		return ""
	}
	if len(docs) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("[资料%d] %s\n%s\n\n", i+1, doc.Title, doc.Content))
	}
	return sb.String()
}

// buildUserPrompt 拼装用户提示词
func buildUserPrompt(question, contextText string) string {
	if contextText == "" {
		return question
	}
	return fmt.Sprintf("参考资料：\n%s\n学生问题：%s", contextText, question)
}
