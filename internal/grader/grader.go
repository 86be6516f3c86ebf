package grader

import (
	"math"
	"sort"
	"strings"
)

// 题目类型
const (
	TypeSingle      = "single"      // 单选题
	TypeTrueFalse   = "truefalse"   // 判断题
	TypeText        = "text"        // 简答题
	TypeMultiSelect = "multiselect" // 多选题
	TypePairing     = "pairing"     // 配对题
)

// ListDelimiter 多选/配对答案的列表分隔符
const ListDelimiter = "|"

// PairDelimiter 配对题中 left:right 的分隔符
const PairDelimiter = ":"

// Question 参与判分的题目
type Question struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// QuestionResult 单题判分结果
type QuestionResult struct {
	ID          string `json:"id"`
	Correct     bool   `json:"correct"`
	Submitted   string `json:"submitted"`
	Expected    string `json:"expected"`
	Explanation string `json:"explanation"`
}

// Result 整卷判分结果
type Result struct {
	Score        float64          `json:"score"` // 百分比，保留一位小数
	CorrectCount int              `json:"correct_count"`
	TotalCount   int              `json:"total_count"`
	PerQuestion  []QuestionResult `json:"per_question"`
}

// Grade 对一次提交判分
// 纯函数：不发起任何 I/O，缺失答案按错误计，永不 panic
func Grade(questions []Question, answers map[string]string) *Result {
	result := &Result{
		TotalCount:  len(questions),
		PerQuestion: make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		submitted := answers[q.ID] // 缺失时为空串，判为错误
		correct := IsCorrect(q.Type, submitted, q.CorrectAnswer)
		if correct {
			result.CorrectCount++
		}

		result.PerQuestion = append(result.PerQuestion, QuestionResult{
			ID:          q.ID,
			Correct:     correct,
			Submitted:   submitted,
			Expected:    q.CorrectAnswer,
			Explanation: q.Explanation,
		})
	}

	result.Score = ComputeScore(result.CorrectCount, result.TotalCount)
	return result
}

// IsCorrect 按题目类型判定单题正误
// 全程忽略大小写与首尾空白
func IsCorrect(questionType, submitted, correct string) bool {
	switch questionType {
	case TypeMultiSelect:
		return equalMultiSelect(submitted, correct)
	case TypePairing:
		return equalPairing(submitted, correct)
	default:
		// single / truefalse / text: 归一化后逐字相等
		return normalize(submitted) != "" && normalize(submitted) == normalize(correct)
	}
}

// ComputeScore 计算百分制得分，保留一位小数
func ComputeScore(correctCount, totalCount int) float64 {
	if totalCount <= 0 {
		return 0
	}
	return math.Round(float64(correctCount)/float64(totalCount)*1000) / 10
}

// normalize 归一化：去首尾空白并小写
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// splitTokens 拆分列表编码答案：按分隔符切开、归一化、丢弃空 token
func splitTokens(s string) []string {
	parts := strings.Split(s, ListDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		t := normalize(p)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// equalMultiSelect 多选题判分：排序后逐项比较（顺序无关）
// 注意：sort-then-compare 不去重，重复提交的行为保持原样
func equalMultiSelect(submitted, correct string) bool {
	subTokens := splitTokens(submitted)
	corTokens := splitTokens(correct)

	if len(subTokens) == 0 || len(subTokens) != len(corTokens) {
		return false
	}

	sort.Strings(subTokens)
	sort.Strings(corTokens)

	for i := range subTokens {
		if subTokens[i] != corTokens[i] {
			return false
		}
	}
	return true
}

// equalPairing 配对题判分：双向集合相等，不完整的配对一律算错
func equalPairing(submitted, correct string) bool {
	subPairs := pairSet(submitted)
	corPairs := pairSet(correct)

	if len(subPairs) == 0 || len(subPairs) != len(corPairs) {
		return false
	}

	for pair := range subPairs {
		if !corPairs[pair] {
			return false
		}
	}
	for pair := range corPairs {
		if !subPairs[pair] {
			return false
		}
	}
	return true
}

// pairSet 将配对编码解析为 "left:right" 集合
func pairSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range splitTokens(s) {
		idx := strings.Index(token, PairDelimiter)
		if idx <= 0 || idx >= len(token)-1 {
			continue // 非法配对项直接丢弃
		}
		left := strings.TrimSpace(token[:idx])
		right := strings.TrimSpace(token[idx+1:])
		set[left+PairDelimiter+right] = true
	}
	return set
}
