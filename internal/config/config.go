package config

// Config 全局配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

// LLMConfig LLM 网关配置
type LLMConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// EmbeddingConfig 向量嵌入配置
type EmbeddingConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig 语义缓存配置
type CacheConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"` // 相似度阈值，默认 0.78
	MaxCandidates       int     `mapstructure:"max_candidates"`       // 单 scope 最大候选数量
}

// GeneratorConfig 分阶段生成器配置
type GeneratorConfig struct {
	BatchSize    int `mapstructure:"batch_size"`     // 每批填充的单元数
	BatchDelayMs int `mapstructure:"batch_delay_ms"` // 批次间隔（限流用）
	MaxUnits     int `mapstructure:"max_units"`      // 规划单元数上限（安全阀）
	PromptMaxLen int `mapstructure:"prompt_max_len"` // 资料文本注入上限
}

// RedisConfig Redis 缓存配置（可选，用于缓存 embedding 结果）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // 秒
}
