package generator

import (
	"fmt"
	"strings"
)

const planSystemPrompt = `You are a curriculum designer for exam-oriented study material.
You plan the structure of slide decks and question papers before any content is written.
Always answer with a pure JSON array, no prose, no markdown fences.`

const fillSystemPrompt = `You are a content writer for exam-oriented study material.
You receive a list of planned units and write the full content for each one.
Always answer with a pure JSON array, no prose, no markdown fences.`

// tierGuidance 难度档位对用词与严谨度的引导
var tierGuidance = map[string]string{
	TierBasic:    "Use simple vocabulary and everyday analogies. Avoid formal notation.",
	TierStandard: "Use standard textbook vocabulary with moderate rigor.",
	TierAdvanced: "Use precise technical vocabulary, formal definitions and rigorous derivations.",
}

// buildPlanPrompt 构建规划阶段的用户提示词
// 数量只做软性引导，最终交给规划器裁量
func buildPlanPrompt(req *Request, maxLen int) string {
	var b strings.Builder

	artifact := "slide deck"
	if req.Kind == "paper" {
		artifact = "question paper"
	}

	targetRange := "10-18"
	if req.WholeModule {
		targetRange = "25-40"
	}

	fmt.Fprintf(&b, "Plan a %s about: %s\n\n", artifact, req.Topic)
	fmt.Fprintf(&b, "Difficulty tier: %s. %s\n", req.Tier, tierGuidance[req.Tier])
	fmt.Fprintf(&b, "Aim for roughly %s units; use your judgement for the exact count.\n\n", targetRange)

	if req.SourceMaterial != "" {
		fmt.Fprintf(&b, "Source material:\n%s\n\n", truncate(req.SourceMaterial, maxLen))
	}

	b.WriteString(`Output a JSON array of units, each: {"kind": "...", "title": "..."}.
Allowed kinds: title, overview, explanatory, visual, example, assessment, summary.
Do not write any content yet.`)

	return b.String()
}

// buildFillPrompt 构建填充阶段的用户提示词（单个批次）
func buildFillPrompt(req *Request, batch []Unit, batchJSON string, maxLen int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write the content for the following %d units of a study artifact about: %s\n\n", len(batch), req.Topic)
	fmt.Fprintf(&b, "Difficulty tier: %s. %s\n\n", req.Tier, tierGuidance[req.Tier])
	fmt.Fprintf(&b, "Units to fill:\n%s\n\n", batchJSON)

	if req.SourceMaterial != "" {
		fmt.Fprintf(&b, "Source material:\n%s\n\n", truncate(req.SourceMaterial, maxLen))
	}

	b.WriteString(`Output a JSON array with exactly one object per input unit, in the same order,
each: {"index": <the unit's index>, "content": "..."}.
The content must match the unit's kind and title.`)

	return b.String()
}

// truncate 截断过长的资料文本，避免超出上下文窗口
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "\n...(truncated)"
}

// extractJSONArray 从 LLM 输出中提取 JSON 数组
// 容忍 markdown 代码块与数组前后的闲话
func extractJSONArray(s string) (string, bool) {
	s = strings.TrimSpace(s)

	// 去掉代码块围栏
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return "", false
	}

	return s[start : end+1], true
}
