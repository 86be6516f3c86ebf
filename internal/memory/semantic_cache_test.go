package memory

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// fakeEmbedder 按固定映射返回向量
type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float64{1, 0, 0}, nil
}

func (f *fakeEmbedder) GetModel() string {
	return "fake-embedding-model"
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

	if err := db.AutoMigrate(&model.AnswerCache{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func newTestCache(t *testing.T, embedder Embedder) *Cache {
	t.Helper()
	return NewCache(newTestDB(t), embedder, &Config{
		Enabled:             true,
		SimilarityThreshold: 0.78,
		MaxCandidates:       200,
	})
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical vectors", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"opposite vectors", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"orthogonal vectors", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"dimension mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
		{"empty vectors", []float64{}, []float64{}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float64{0.3, 0.5, 0.8}
	b := []float64{0.1, 0.9, 0.2}

	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("cosine similarity should be symmetric")
	}
}

func TestLookupEmptyCache(t *testing.T) {
	cache := newTestCache(t, &fakeEmbedder{})

	answer, vec, hit := cache.Lookup(context.Background(), "math-101", "什么是二次函数")
	if hit {
		t.Error("empty cache should not hit")
	}
	if answer != "" {
		t.Errorf("answer = %q, want empty", answer)
	}
	// 未命中也要返回计算好的向量，供回写复用
	if vec == nil {
		t.Error("query vector should be returned on miss")
	}
}

func TestStoreThenLookupHit(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"什么是二次函数":   {1, 0, 0},
			"二次函数是什么意思": {0.99, 0.1, 0},
		},
	}
	cache := newTestCache(t, embedder)
	ctx := context.Background()

	if err := cache.Store("math-101", "什么是二次函数", []float64{1, 0, 0}, "二次函数是形如 y=ax²+bx+c 的函数"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// 语义相近的问题应当命中
	answer, _, hit := cache.Lookup(ctx, "math-101", "二次函数是什么意思")
	if !hit {
		t.Fatal("semantically similar question should hit")
	}
	if answer != "二次函数是形如 y=ax²+bx+c 的函数" {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestLookupBelowThreshold(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"什么是二次函数": {1, 0, 0},
			"细胞膜的结构":  {0, 1, 0}, // 与缓存向量正交
		},
	}
	cache := newTestCache(t, embedder)
	ctx := context.Background()

	if err := cache.Store("math-101", "什么是二次函数", []float64{1, 0, 0}, "answer"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if _, _, hit := cache.Lookup(ctx, "math-101", "细胞膜的结构"); hit {
		t.Error("dissimilar question should not hit")
	}
}

func TestLookupScopeIsolation(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{"q": {1, 0, 0}},
	}
	cache := newTestCache(t, embedder)
	ctx := context.Background()

	if err := cache.Store("math-101", "q", []float64{1, 0, 0}, "answer"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// 同样的问题在另一个 scope 下不应命中
	if _, _, hit := cache.Lookup(ctx, "bio-201", "q"); hit {
		t.Error("cache entries must not leak across scopes")
	}

	if _, _, hit := cache.Lookup(ctx, "math-101", "q"); !hit {
		t.Error("same scope should hit")
	}
}

func TestLookupEmbedFailureFailsOpen(t *testing.T) {
	cache := newTestCache(t, &fakeEmbedder{err: fmt.Errorf("embedding service down")})

	answer, vec, hit := cache.Lookup(context.Background(), "math-101", "q")
	if hit || answer != "" || vec != nil {
		t.Error("embedding failure should degrade to a plain miss")
	}
}

func TestLookupDisabledCache(t *testing.T) {
	embedder := &fakeEmbedder{}
	cache := NewCache(newTestDB(t), embedder, &Config{Enabled: false})

	if _, _, hit := cache.Lookup(context.Background(), "s", "q"); hit {
		t.Error("disabled cache should never hit")
	}
	if embedder.calls != 0 {
		t.Error("disabled cache should not call the embedder")
	}
}

func TestLookupIncrementsHitCount(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{"q": {1, 0, 0}},
	}
	db := newTestDB(t)
	cache := NewCache(db, embedder, &Config{
		Enabled:             true,
		SimilarityThreshold: 0.78,
	})
	ctx := context.Background()

	if err := cache.Store("s", "q", []float64{1, 0, 0}, "answer"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if _, _, hit := cache.Lookup(ctx, "s", "q"); !hit {
		t.Fatal("expected hit")
	}

	// 命中统计异步写入，轮询等待
	deadline := time.Now().Add(2 * time.Second)
	for {
		var entry model.AnswerCache
		if err := db.First(&entry).Error; err != nil {
			t.Fatalf("failed to load entry: %v", err)
		}
		if entry.HitCount == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("hit_count = %d, want 1", entry.HitCount)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetStats(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{"q1": {1, 0, 0}, "q2": {0, 1, 0}},
	}
	cache := newTestCache(t, embedder)

	if err := cache.Store("s", "q1", []float64{1, 0, 0}, "a1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Store("s", "q2", []float64{0, 1, 0}, "a2"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.EntryCount != 2 {
		t.Errorf("EntryCount = %d, want 2", stats.EntryCount)
	}
	if stats.HitCount != 0 {
		t.Errorf("HitCount = %d, want 0", stats.HitCount)
	}
	if stats.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", stats.TotalQueries)
	}
}

func TestClear(t *testing.T) {
	cache := newTestCache(t, &fakeEmbedder{})

	if err := cache.Store("s1", "q1", []float64{1, 0, 0}, "a1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Store("s2", "q2", []float64{0, 1, 0}, "a2"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// 只清理一个 scope
	deleted, err := cache.Clear("s1")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	// 清理全部
	deleted, err = cache.Clear("")
	if err != nil {
		t.Fatalf("Clear all failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.EntryCount != 0 {
		t.Errorf("EntryCount = %d, want 0 after clear", stats.EntryCount)
	}
}
