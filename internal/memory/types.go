package memory

// CacheStats 缓存统计
type CacheStats struct {
	EntryCount   int64   `json:"entry_count"`
	HitCount     int64   `json:"hit_count"`
	MissCount    int64   `json:"miss_count"`
	HitRate      float64 `json:"hit_rate"`
	TotalQueries int64   `json:"total_queries"`
}
