package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// fakeGateway 固定返回预设文本
type fakeGateway struct {
	response string
	err      error
}

func (f *fakeGateway) Generate(ctx context.Context, task string, messages []llm.Message) (string, error) {
	return f.response, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.QuizSet{}, &model.Question{}, &model.Submission{}, &model.GenerationLog{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

const quizResponse = `[
  {"type": "single", "prompt": "1+1=?", "options": ["1", "2", "3"], "correct_answer": "2", "explanation": "basic addition"},
  {"type": "truefalse", "prompt": "水在 100 度沸腾", "correct_answer": "true", "explanation": "标准大气压下"},
  {"type": "multiselect", "prompt": "哪些是质数", "options": ["2", "3", "4"], "correct_answer": "2|3", "explanation": "4 不是质数"}
]`

func TestGenerateQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizServiceWithDB(db, &fakeGateway{response: quizResponse})

	quizSet, questions, err := svc.GenerateQuiz(context.Background(), &GenerateQuizRequest{
		Scope: "math-101",
		Topic: "基础运算",
	})
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}

	if quizSet.ID == "" {
		t.Error("quiz set should have an ID")
	}
	if quizSet.Tier != "standard" {
		t.Errorf("Tier = %q, want standard by default", quizSet.Tier)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}

	// 持久化校验
	var count int64
	db.Model(&model.Question{}).Where("quiz_set_id = ?", quizSet.ID).Count(&count)
	if count != 3 {
		t.Errorf("persisted %d questions, want 3", count)
	}
}

func TestGenerateQuizDropsInvalidQuestions(t *testing.T) {
	response := `[
	  {"type": "single", "prompt": "ok", "correct_answer": "A"},
	  {"type": "essay", "prompt": "unknown type", "correct_answer": "x"},
	  {"type": "single", "prompt": "", "correct_answer": "A"},
	  {"type": "single", "prompt": "no answer", "correct_answer": ""}
	]`

	db := newTestDB(t)
	svc := NewQuizServiceWithDB(db, &fakeGateway{response: response})

	_, questions, err := svc.GenerateQuiz(context.Background(), &GenerateQuizRequest{
		Scope: "s", Topic: "t",
	})
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("got %d questions, want 1 after dropping invalid ones", len(questions))
	}
}

func TestGenerateQuizAllInvalid(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizServiceWithDB(db, &fakeGateway{response: `[{"type": "essay", "prompt": "x", "correct_answer": "y"}]`})

	_, _, err := svc.GenerateQuiz(context.Background(), &GenerateQuizRequest{Scope: "s", Topic: "t"})
	if err == nil {
		t.Fatal("expected error when no valid questions remain")
	}
}

func TestGenerateQuizGatewayError(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizServiceWithDB(db, &fakeGateway{err: fmt.Errorf("upstream down")})

	_, _, err := svc.GenerateQuiz(context.Background(), &GenerateQuizRequest{Scope: "s", Topic: "t"})
	if err == nil {
		t.Fatal("expected error when gateway fails")
	}
}

func TestGradeSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizServiceWithDB(db, &fakeGateway{response: quizResponse})

	quizSet, questions, err := svc.GenerateQuiz(context.Background(), &GenerateQuizRequest{
		Scope: "math-101", Topic: "基础运算",
	})
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}

	// 两对一错
	answers := map[string]string{
		questions[0].ID: "2",
		questions[1].ID: "false",
		questions[2].ID: "3|2", // 顺序无关
	}

	result, err := svc.GradeSubmission(quizSet.ID, answers)
	if err != nil {
		t.Fatalf("GradeSubmission failed: %v", err)
	}

	if result.CorrectCount != 2 || result.TotalCount != 3 {
		t.Errorf("correct/total = %d/%d, want 2/3", result.CorrectCount, result.TotalCount)
	}
	if result.Score != 66.7 {
		t.Errorf("Score = %v, want 66.7", result.Score)
	}

	// 答题记录已持久化
	var submission model.Submission
	if err := db.First(&submission, "quiz_set_id = ?", quizSet.ID).Error; err != nil {
		t.Fatalf("submission not persisted: %v", err)
	}
	if submission.Score != 66.7 {
		t.Errorf("persisted score = %v, want 66.7", submission.Score)
	}
}

func TestGradeSubmissionUnknownQuizSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizServiceWithDB(db, &fakeGateway{})

	if _, err := svc.GradeSubmission("no-such-id", map[string]string{}); err == nil {
		t.Fatal("expected error for unknown quiz set")
	}
}
