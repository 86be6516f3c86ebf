package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
)

// Config 分阶段生成器配置
type Config struct {
	BatchSize    int           // 每批填充的单元数，默认 8
	BatchDelay   time.Duration // 批次间隔，默认 1s（对上游限流的退避，不是正确性要求）
	MaxUnits     int           // 规划单元数上限（安全阀），默认 64
	PromptMaxLen int           // 资料文本注入上限，默认 8000
}

// StagedGenerator 分阶段生成器
// 先用一次廉价的规划调用确定结构，再分批填充内容；
// 规划失败是致命错误，单个批次失败只跳过该批次
type StagedGenerator struct {
	gateway llm.Gateway
	config  *Config
}

// NewStagedGenerator 创建分阶段生成器
func NewStagedGenerator(gateway llm.Gateway, config *Config) *StagedGenerator {
	if config == nil {
		config = &Config{}
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 8
	}
	if config.MaxUnits <= 0 {
		config.MaxUnits = 64
	}
	if config.PromptMaxLen <= 0 {
		config.PromptMaxLen = 8000
	}

	return &StagedGenerator{
		gateway: gateway,
		config:  config,
	}
}

// Generate 执行一次完整的制品生成：规划 -> 分批填充 -> 组装
func (g *StagedGenerator) Generate(ctx context.Context, req *Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// 1. 规划阶段（失败则整个请求失败）
	logx.Info("Artifact generation started, state=%s, kind=%s, topic=%s", StatePlanning, req.Kind, req.Topic)
	units, err := g.plan(ctx, req)
	if err != nil {
		logx.Error("Artifact generation failed, state=%s: %v", StateFailed, err)
		return nil, fmt.Errorf("plan phase failed: %w", err)
	}

	// 2. 填充阶段（按批次顺序执行，单批失败只跳过该批）
	logx.Info("Artifact plan ready, %d units, state=%s", len(units), StateFilling)
	skipped, err := g.fill(ctx, req, units)
	if err != nil {
		return nil, err
	}

	// 3. 组装阶段：仅保留有内容的单元，保持 index 升序，不重新编号
	logx.Info("Assembling artifact, state=%s", StateAssembling)
	var filled []Unit
	for _, u := range units {
		if u.Content != "" {
			filled = append(filled, u)
		}
	}

	result := &Result{
		Units:          filled,
		PlannedCount:   len(units),
		FilledCount:    len(filled),
		SkippedBatches: skipped,
	}

	logx.Info("✅ Artifact generation completed, state=%s, planned=%d, filled=%d, skipped_batches=%d",
		StateDone, result.PlannedCount, result.FilledCount, result.SkippedBatches)

	if result.Degraded() {
		logx.Warn("Artifact is degraded: only %d of %d units filled", result.FilledCount, result.PlannedCount)
	}

	return result, nil
}

// validateRequest 入参校验，在任何外部调用之前同步拒绝
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if req.Kind != "deck" && req.Kind != "paper" {
		return fmt.Errorf("invalid artifact kind: %s", req.Kind)
	}
	if req.Tier == "" {
		req.Tier = TierStandard
	}
	if _, ok := tierGuidance[req.Tier]; !ok {
		return fmt.Errorf("invalid tier: %s", req.Tier)
	}
	return nil
}

// plannedUnit 规划阶段 LLM 产出的单元结构
type plannedUnit struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// plan 规划阶段：产出有序的单元列表（无内容）
func (g *StagedGenerator) plan(ctx context.Context, req *Request) ([]Unit, error) {
	messages := []llm.Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: buildPlanPrompt(req, g.config.PromptMaxLen)},
	}

	raw, err := g.gateway.Generate(ctx, llm.TaskArtifactPlan, messages)
	if err != nil {
		return nil, err
	}

	jsonStr, ok := extractJSONArray(raw)
	if !ok {
		return nil, fmt.Errorf("plan output contains no JSON array")
	}

	var planned []plannedUnit
	if err := json.Unmarshal([]byte(jsonStr), &planned); err != nil {
		return nil, fmt.Errorf("failed to parse plan output: %w", err)
	}

	if len(planned) == 0 {
		return nil, fmt.Errorf("plan yielded no units")
	}

	// 安全阀：超出上限的规划截断处理
	if len(planned) > g.config.MaxUnits {
		logx.Warn("Plan yielded %d units, truncating to %d", len(planned), g.config.MaxUnits)
		planned = planned[:g.config.MaxUnits]
	}

	// index 按位置一次性分配，构成稠密区间 [0, n)
	units := make([]Unit, 0, len(planned))
	for i, p := range planned {
		units = append(units, Unit{
			Index: i,
			Kind:  normalizeKind(strings.ToLower(strings.TrimSpace(p.Kind))),
			Title: strings.TrimSpace(p.Title),
		})
	}

	return units, nil
}

// filledUnit 填充阶段 LLM 产出的单元内容
type filledUnit struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// fill 填充阶段：按固定批次大小顺序填充，批次间插入固定延迟
// 返回被跳过的批次数
func (g *StagedGenerator) fill(ctx context.Context, req *Request, units []Unit) (int, error) {
	batchSize := g.config.BatchSize
	skipped := 0
	batchNum := 0

	for start := 0; start < len(units); start += batchSize {
		// 调用方可以在批次边界放弃整个请求
		if err := ctx.Err(); err != nil {
			return skipped, err
		}

		// 批次间限流延迟（第一批之前不等待）
		if batchNum > 0 && g.config.BatchDelay > 0 {
			select {
			case <-time.After(g.config.BatchDelay):
			case <-ctx.Done():
				return skipped, ctx.Err()
			}
		}
		batchNum++

		end := start + batchSize
		if end > len(units) {
			end = len(units)
		}
		batch := units[start:end]

		if err := g.fillBatch(ctx, req, batch); err != nil {
			// 单批失败不终止整个制品
			logx.Warn("Batch %d skipped (%d units): %v", batchNum, len(batch), err)
			skipped++
		}
	}

	return skipped, nil
}

// fillBatch 填充单个批次，就地写入 units 的 Content
// 任何解析/形状不匹配都作为整批失败返回
func (g *StagedGenerator) fillBatch(ctx context.Context, req *Request, batch []Unit) error {
	// 只携带 {index, kind, title} 三元组
	outline := make([]Unit, len(batch))
	for i, u := range batch {
		outline[i] = Unit{Index: u.Index, Kind: u.Kind, Title: u.Title}
	}
	batchJSON, err := json.Marshal(outline)
	if err != nil {
		return err
	}

	messages := []llm.Message{
		{Role: "system", Content: fillSystemPrompt},
		{Role: "user", Content: buildFillPrompt(req, batch, string(batchJSON), g.config.PromptMaxLen)},
	}

	raw, err := g.gateway.Generate(ctx, llm.TaskArtifactFill, messages)
	if err != nil {
		return err
	}

	jsonStr, ok := extractJSONArray(raw)
	if !ok {
		return fmt.Errorf("fill output contains no JSON array")
	}

	var filled []filledUnit
	if err := json.Unmarshal([]byte(jsonStr), &filled); err != nil {
		return fmt.Errorf("failed to parse fill output: %w", err)
	}

	// 数量与顺序必须与批次完全一致
	if len(filled) != len(batch) {
		return fmt.Errorf("fill output length mismatch: want %d, got %d", len(batch), len(filled))
	}
	for i := range filled {
		if filled[i].Index != batch[i].Index {
			return fmt.Errorf("fill output order mismatch at position %d: want index %d, got %d",
				i, batch[i].Index, filled[i].Index)
		}
		if strings.TrimSpace(filled[i].Content) == "" {
			return fmt.Errorf("fill output has empty content at index %d", filled[i].Index)
		}
	}

	// 校验全部通过后才写入内容，保证批次要么整体生效要么整体跳过
	for i := range batch {
		batch[i].Content = strings.TrimSpace(filled[i].Content)
	}

	return nil
}
