package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig 加载配置文件
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// 默认配置文件搜索路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.edunexus")
		v.AddConfigPath("/etc/edunexus")
	}

	// 支持环境变量
	v.SetEnvPrefix("EDUNEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果是找不到配置文件，则使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 替换环境变量
	expandEnvVars(&config)

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// Server 默认配置
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)

	// Cache 默认配置
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.similarity_threshold", 0.78)
	v.SetDefault("cache.max_candidates", 200)

	// Generator 默认配置
	v.SetDefault("generator.batch_size", 8)
	v.SetDefault("generator.batch_delay_ms", 1000)
	v.SetDefault("generator.max_units", 64)
	v.SetDefault("generator.prompt_max_len", 8000)

	// Redis 默认配置
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 86400)
}

// expandEnvVars 展开配置中的环境变量
func expandEnvVars(config *Config) {
	config.LLM.APIKey = os.ExpandEnv(config.LLM.APIKey)
	config.LLM.BaseURL = os.ExpandEnv(config.LLM.BaseURL)
	config.Embedding.APIKey = os.ExpandEnv(config.Embedding.APIKey)
	config.Embedding.BaseURL = os.ExpandEnv(config.Embedding.BaseURL)
	config.Redis.Password = os.ExpandEnv(config.Redis.Password)
}
