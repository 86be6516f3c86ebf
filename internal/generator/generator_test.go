package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
)

// fakeGateway 按任务类型返回预设响应
type fakeGateway struct {
	planResponse string
	planErr      error
	fillResponse func(call int) (string, error)
	fillCalls    int
}

func (f *fakeGateway) Generate(ctx context.Context, task string, messages []llm.Message) (string, error) {
	switch task {
	case llm.TaskArtifactPlan:
		return f.planResponse, f.planErr
	case llm.TaskArtifactFill:
		f.fillCalls++
		return f.fillResponse(f.fillCalls)
	}
	return "", fmt.Errorf("unexpected task: %s", task)
}

// echoFill 为一批 outline 生成合法的填充响应
func echoFill(units []Unit) string {
	filled := make([]map[string]any, 0, len(units))
	for _, u := range units {
		filled = append(filled, map[string]any{
			"index":   u.Index,
			"content": fmt.Sprintf("content for unit %d", u.Index),
		})
	}
	data, _ := json.Marshal(filled)
	return string(data)
}

func planJSON(n int) string {
	units := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, map[string]string{
			"kind":  UnitKindExplanatory,
			"title": fmt.Sprintf("Unit %d", i),
		})
	}
	data, _ := json.Marshal(units)
	return string(data)
}

func testRequest() *Request {
	return &Request{
		Scope: "math-101",
		Kind:  "deck",
		Topic: "二次函数",
		Tier:  TierStandard,
	}
}

func TestGenerateSuccess(t *testing.T) {
	gw := &fakeGateway{
		planResponse: planJSON(3),
		fillResponse: func(call int) (string, error) {
			return echoFill([]Unit{{Index: 0}, {Index: 1}, {Index: 2}}), nil
		},
	}

	g := NewStagedGenerator(gw, &Config{BatchSize: 8})
	result, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.PlannedCount != 3 || result.FilledCount != 3 {
		t.Errorf("planned/filled = %d/%d, want 3/3", result.PlannedCount, result.FilledCount)
	}
	if result.SkippedBatches != 0 {
		t.Errorf("SkippedBatches = %d, want 0", result.SkippedBatches)
	}
	if result.Degraded() {
		t.Error("fully filled result should not be degraded")
	}

	// 单元按 index 升序且内容非空
	for i, u := range result.Units {
		if u.Index != i {
			t.Errorf("unit %d has index %d", i, u.Index)
		}
		if u.Content == "" {
			t.Errorf("unit %d has empty content", i)
		}
	}
}

func TestGeneratePlanFailureIsFatal(t *testing.T) {
	gw := &fakeGateway{planErr: fmt.Errorf("upstream unavailable")}

	g := NewStagedGenerator(gw, nil)
	if _, err := g.Generate(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error when plan call fails")
	}
	if gw.fillCalls != 0 {
		t.Errorf("fill should not be called after plan failure, got %d calls", gw.fillCalls)
	}
}

func TestGenerateEmptyPlanIsFatal(t *testing.T) {
	gw := &fakeGateway{planResponse: "[]"}

	g := NewStagedGenerator(gw, nil)
	if _, err := g.Generate(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error when plan yields no units")
	}
}

func TestGenerateInvalidPlanOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json array", "sorry, I cannot help with that"},
		{"malformed json", "[{broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{planResponse: tt.response}
			g := NewStagedGenerator(gw, nil)
			if _, err := g.Generate(context.Background(), testRequest()); err == nil {
				t.Fatal("expected error for invalid plan output")
			}
		})
	}
}

func TestGeneratePlanTruncatedAtMaxUnits(t *testing.T) {
	gw := &fakeGateway{
		planResponse: planJSON(20),
		fillResponse: func(call int) (string, error) {
			// 截断后只剩 5 个单元，单批填完
			return echoFill([]Unit{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}, {Index: 4}}), nil
		},
	}

	g := NewStagedGenerator(gw, &Config{BatchSize: 8, MaxUnits: 5})
	result, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.PlannedCount != 5 {
		t.Errorf("PlannedCount = %d, want 5 after truncation", result.PlannedCount)
	}
}

func TestGenerateBatchSkippedOnError(t *testing.T) {
	// 10 个单元、批大小 4：三个批次，第二批失败
	gw := &fakeGateway{
		planResponse: planJSON(10),
		fillResponse: func(call int) (string, error) {
			switch call {
			case 1:
				return echoFill([]Unit{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}), nil
			case 2:
				return "", fmt.Errorf("rate limited")
			default:
				return echoFill([]Unit{{Index: 8}, {Index: 9}}), nil
			}
		},
	}

	g := NewStagedGenerator(gw, &Config{BatchSize: 4})
	result, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.SkippedBatches != 1 {
		t.Errorf("SkippedBatches = %d, want 1", result.SkippedBatches)
	}
	if result.FilledCount != 6 {
		t.Errorf("FilledCount = %d, want 6", result.FilledCount)
	}

	// 被跳过批次的单元不出现在结果中，编号保持原样
	wantIndexes := []int{0, 1, 2, 3, 8, 9}
	for i, u := range result.Units {
		if u.Index != wantIndexes[i] {
			t.Errorf("unit %d has index %d, want %d", i, u.Index, wantIndexes[i])
		}
	}
}

func TestGenerateBatchSkippedOnShapeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"length mismatch", `[{"index":0,"content":"only one"}]`},
		{"order mismatch", `[{"index":1,"content":"a"},{"index":0,"content":"b"}]`},
		{"empty content", `[{"index":0,"content":"a"},{"index":1,"content":"  "}]`},
		{"no json array", "I refuse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{
				planResponse: planJSON(2),
				fillResponse: func(call int) (string, error) {
					return tt.response, nil
				},
			}

			g := NewStagedGenerator(gw, &Config{BatchSize: 8})
			result, err := g.Generate(context.Background(), testRequest())
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if result.SkippedBatches != 1 {
				t.Errorf("SkippedBatches = %d, want 1", result.SkippedBatches)
			}
			if result.FilledCount != 0 {
				t.Errorf("FilledCount = %d, want 0", result.FilledCount)
			}
		})
	}
}

func TestGenerateAllBatchesFailed(t *testing.T) {
	gw := &fakeGateway{
		planResponse: planJSON(4),
		fillResponse: func(call int) (string, error) {
			return "", fmt.Errorf("always fails")
		},
	}

	g := NewStagedGenerator(gw, &Config{BatchSize: 2})
	result, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("all batches failing should not be a fatal error, got: %v", err)
	}

	if result.FilledCount != 0 {
		t.Errorf("FilledCount = %d, want 0", result.FilledCount)
	}
	if result.SkippedBatches != 2 {
		t.Errorf("SkippedBatches = %d, want 2", result.SkippedBatches)
	}
	if !result.Degraded() {
		t.Error("zero filled units should be degraded")
	}
}

func TestGenerateContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := &fakeGateway{
		planResponse: planJSON(2),
		fillResponse: func(call int) (string, error) {
			return echoFill([]Unit{{Index: 0}, {Index: 1}}), nil
		},
	}

	// plan 用的是 fake，不感知 ctx；取消在批次边界被检测
	g := NewStagedGenerator(gw, &Config{BatchSize: 8})
	if _, err := g.Generate(ctx, testRequest()); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr bool
	}{
		{"nil request", nil, true},
		{"empty topic", &Request{Kind: "deck"}, true},
		{"whitespace topic", &Request{Kind: "deck", Topic: "   "}, true},
		{"invalid kind", &Request{Kind: "poster", Topic: "t"}, true},
		{"invalid tier", &Request{Kind: "deck", Topic: "t", Tier: "expert"}, true},
		{"valid deck", &Request{Kind: "deck", Topic: "t"}, false},
		{"valid paper", &Request{Kind: "paper", Topic: "t", Tier: TierAdvanced}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequestDefaultsTier(t *testing.T) {
	req := &Request{Kind: "deck", Topic: "t"}
	if err := validateRequest(req); err != nil {
		t.Fatalf("validateRequest failed: %v", err)
	}
	if req.Tier != TierStandard {
		t.Errorf("Tier = %q, want %q", req.Tier, TierStandard)
	}
}

func TestNormalizeKind(t *testing.T) {
	if got := normalizeKind("example"); got != UnitKindExample {
		t.Errorf("normalizeKind(example) = %q", got)
	}
	if got := normalizeKind("made-up-kind"); got != UnitKindExplanatory {
		t.Errorf("unknown kind should fall back to explanatory, got %q", got)
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare array", `[1,2]`, `[1,2]`, true},
		{"fenced array", "```json\n[1,2]\n```", `[1,2]`, true},
		{"surrounded by prose", "Here you go: [1,2] enjoy", `[1,2]`, true},
		{"no array", "nothing here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONArray(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("extractJSONArray(%q) = %q, %v; want %q, %v",
					tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
