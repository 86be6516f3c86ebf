package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/database"
	"github.com/dsd7888/EduNexusAI-sub000/internal/generator"
	"github.com/dsd7888/EduNexusAI-sub000/internal/grader"
	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

const quizSystemPrompt = `你是一位出题老师，负责根据给定主题生成测验题目。
要求：
1. 只输出一个 JSON 数组，不要输出任何其他文字，不要使用 markdown 代码块
2. 每个元素形如 {"type": "...", "prompt": "...", "options": ["..."], "correct_answer": "...", "explanation": "..."}
3. type 取值：single（单选）、truefalse（判断）、text（简答）、multiselect（多选）、pairing（配对）
4. 多选题 correct_answer 用 "|" 连接多个选项，如 "A|C"
5. 配对题 correct_answer 用 "|" 连接多个 "left:right" 对，如 "概念1:定义1|概念2:定义2"
6. 判断题 correct_answer 为 "true" 或 "false"
7. 每道题必须附带 explanation 解析`

// QuizService 测验服务
// 负责题目生成、持久化与提交判分
type QuizService struct {
	db      *gorm.DB
	gateway llm.Gateway
	logSvc  *GenerationLogService
}

// NewQuizService 创建测验服务实例
func NewQuizService(gateway llm.Gateway) *QuizService {
	return &QuizService{
		db:      database.GetDB(),
		gateway: gateway,
		logSvc:  NewGenerationLogService(),
	}
}

// NewQuizServiceWithDB 使用指定数据库连接创建实例（测试用）
func NewQuizServiceWithDB(db *gorm.DB, gateway llm.Gateway) *QuizService {
	return &QuizService{db: db, gateway: gateway, logSvc: NewGenerationLogServiceWithDB(db)}
}

// GenerateQuizRequest 测验生成请求
type GenerateQuizRequest struct {
	Scope string `json:"scope" binding:"required"`
	Topic string `json:"topic" binding:"required"`
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}

// generatedQuestion 生成阶段 LLM 产出的题目结构
type generatedQuestion struct {
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuiz 生成一套测验并持久化
func (s *QuizService) GenerateQuiz(ctx context.Context, req *GenerateQuizRequest) (*model.QuizSet, []model.Question, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, nil, fmt.Errorf("topic is required")
	}
	if req.Tier == "" {
		req.Tier = generator.TierStandard
	}
	count := req.Count
	if count <= 0 {
		count = 10
	}

	userPrompt := fmt.Sprintf("主题：%s\n难度：%s\n题目数量：%d", req.Topic, req.Tier, count)
	messages := []llm.Message{
		{Role: "system", Content: quizSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	start := time.Now()
	raw, err := s.gateway.Generate(ctx, llm.TaskQuizGenerate, messages)
	if err != nil {
		s.logSvc.Record(&LogParams{
			Task: llm.TaskQuizGenerate, Scope: req.Scope,
			Latency: time.Since(start).Milliseconds(), Err: err,
		})
		return nil, nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	generated, err := parseGeneratedQuestions(raw)
	if err != nil {
		s.logSvc.Record(&LogParams{
			Task: llm.TaskQuizGenerate, Scope: req.Scope,
			Latency: time.Since(start).Milliseconds(), Err: err,
		})
		return nil, nil, err
	}
	s.logSvc.Record(&LogParams{
		Task: llm.TaskQuizGenerate, Scope: req.Scope, Success: true,
		Latency: time.Since(start).Milliseconds(),
	})

	quizSet := &model.QuizSet{
		ID:    uuid.New().String(),
		Scope: req.Scope,
		Title: req.Topic,
		Tier:  req.Tier,
	}

	questions := make([]model.Question, 0, len(generated))
	for _, g := range generated {
		optionsJSON := ""
		if len(g.Options) > 0 {
			data, _ := json.Marshal(g.Options)
			optionsJSON = string(data)
		}
		questions = append(questions, model.Question{
			ID:            uuid.New().String(),
			QuizSetID:     quizSet.ID,
			Type:          g.Type,
			Prompt:        g.Prompt,
			Options:       optionsJSON,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quizSet).Error; err != nil {
			return fmt.Errorf("failed to create quiz set: %w", err)
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logx.Info("✅ Quiz generated: id=%s, topic=%s, questions=%d", quizSet.ID, req.Topic, len(questions))
	return quizSet, questions, nil
}

// parseGeneratedQuestions 解析并校验 LLM 产出的题目
func parseGeneratedQuestions(raw string) ([]generatedQuestion, error) {
	jsonStr, ok := extractJSONArray(raw)
	if !ok {
		return nil, fmt.Errorf("quiz output contains no JSON array")
	}

	var all []generatedQuestion
	if err := json.Unmarshal([]byte(jsonStr), &all); err != nil {
		return nil, fmt.Errorf("failed to parse quiz output: %w", err)
	}

	// 丢弃形状不合法的题目，全部不合法才算失败
	valid := make([]generatedQuestion, 0, len(all))
	for _, g := range all {
		if strings.TrimSpace(g.Prompt) == "" || strings.TrimSpace(g.CorrectAnswer) == "" {
			continue
		}
		switch g.Type {
		case model.QuestionTypeSingle, model.QuestionTypeTrueFalse, model.QuestionTypeText,
			model.QuestionTypeMultiSelect, model.QuestionTypePairing:
			valid = append(valid, g)
		default:
			logx.Warn("Dropping question with unknown type: %s", g.Type)
		}
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("quiz output yielded no valid questions")
	}
	return valid, nil
}

// extractJSONArray 提取文本中的 JSON 数组（容忍 markdown 代码块包裹）
func extractJSONArray(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// GetQuizSet 读取测验集及其题目
func (s *QuizService) GetQuizSet(id string) (*model.QuizSet, []model.Question, error) {
	var quizSet model.QuizSet
	if err := s.db.First(&quizSet, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("quiz set not found: %s", id)
		}
		return nil, nil, fmt.Errorf("failed to get quiz set: %w", err)
	}

	var questions []model.Question
	if err := s.db.Where("quiz_set_id = ?", id).
		Order("created_at ASC").
		Find(&questions).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load questions: %w", err)
	}

	return &quizSet, questions, nil
}

// GradeSubmission 对一次提交判分并持久化答题记录
// 判分本身是纯计算，缺失答案按错误计
func (s *QuizService) GradeSubmission(quizSetID string, answers map[string]string) (*grader.Result, error) {
	_, questions, err := s.GetQuizSet(quizSetID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz set has no questions: %s", quizSetID)
	}

	gradeQuestions := make([]grader.Question, 0, len(questions))
	for _, q := range questions {
		gradeQuestions = append(gradeQuestions, grader.Question{
			ID:            q.ID,
			Type:          q.Type,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	result := grader.Grade(gradeQuestions, answers)

	// 持久化答题记录（失败只打日志，不影响判分结果返回）
	answersJSON, _ := json.Marshal(answers)
	submission := &model.Submission{
		QuizSetID:    quizSetID,
		Answers:      string(answersJSON),
		Score:        result.Score,
		CorrectCount: result.CorrectCount,
		TotalCount:   result.TotalCount,
	}
	if err := s.db.Create(submission).Error; err != nil {
		logx.Warn("Failed to save submission: %v", err)
	}

	logx.Info("✅ Submission graded: quiz_set=%s, score=%.1f (%d/%d)",
		quizSetID, result.Score, result.CorrectCount, result.TotalCount)
	return result, nil
}
