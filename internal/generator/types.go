package generator

// 单元类型（封闭集合）
const (
	UnitKindTitle       = "title"       // 封面/标题页
	UnitKindOverview    = "overview"    // 概览
	UnitKindExplanatory = "explanatory" // 讲解
	UnitKindVisual      = "visual"      // 图示说明
	UnitKindExample     = "example"     // 例题
	UnitKindAssessment  = "assessment"  // 练习题
	UnitKindSummary     = "summary"     // 总结
)

// 难度档位（影响用词与严谨程度，不影响单元数量）
const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierAdvanced = "advanced"
)

// 生成阶段状态
const (
	StatePlanning   = "planning"
	StateFilling    = "filling"
	StateAssembling = "assembling"
	StateDone       = "done"
	StateFailed     = "failed"
)

// Unit 制品单元
// Index 在规划时按位置一次性分配，之后不重排、不重新编号
type Unit struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// Request 制品生成请求
type Request struct {
	Scope          string `json:"scope"`
	Kind           string `json:"kind"` // deck | paper
	Topic          string `json:"topic"`
	Tier           string `json:"tier"`
	SourceMaterial string `json:"source_material"`
	WholeModule    bool   `json:"whole_module"` // true=整个模块, false=单个主题（影响规划的数量引导）
}

// Result 制品生成结果
type Result struct {
	Units          []Unit `json:"units"` // 仅包含填充成功的单元，按 index 升序
	PlannedCount   int    `json:"planned_count"`
	FilledCount    int    `json:"filled_count"`
	SkippedBatches int    `json:"skipped_batches"`
}

// Degraded 判断结果是否属于降级产物（填充成功的单元过少）
func (r *Result) Degraded() bool {
	if r.PlannedCount == 0 {
		return true
	}
	return r.FilledCount*2 < r.PlannedCount
}

// validKinds 单元类型合法性表
var validKinds = map[string]bool{
	UnitKindTitle:       true,
	UnitKindOverview:    true,
	UnitKindExplanatory: true,
	UnitKindVisual:      true,
	UnitKindExample:     true,
	UnitKindAssessment:  true,
	UnitKindSummary:     true,
}

// normalizeKind 将规划器产出的类型归一到封闭集合
func normalizeKind(kind string) string {
	if validKinds[kind] {
		return kind
	}
	return UnitKindExplanatory
}
