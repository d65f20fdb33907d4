package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

type Config struct {
	Server ServerConfig
	AI     AIConfig
	RAG    RAGConfig
	Redis  RedisConfig
}

type ServerConfig struct {
	Env      string
	LogLevel string
}

// AIConfig OpenAI兼容服务配置
type AIConfig struct {
	APIKey         string `validate:"required"`
	BaseURL        string
	Model          string `validate:"required"`
	EmbeddingModel string `validate:"required"`
	MaxTokens      int    `validate:"gt=0"`
	Temperature    float64
	TimeoutSeconds int `validate:"gt=0"`
}

// RAGConfig 检索增强生成配置
type RAGConfig struct {
	ChunkSize    int `validate:"gt=0"`
	ChunkOverlap int `validate:"gte=0"`
	TopK         int `validate:"gte=0"`
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	TTL       int
	KeyPrefix string
}

var AppConfig *Config

// LoadConfig 加载配置：默认值 + 环境变量覆盖，加载后做结构校验
func LoadConfig() error {
	// 设置默认值
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")

	// AI配置默认值
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.model", "gpt-4")
	viper.SetDefault("ai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("ai.max_tokens", 2000)
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.timeout_seconds", 30)

	// RAG配置默认值
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 200)
	viper.SetDefault("rag.top_k", 5)

	// Redis配置默认值
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", 3600)
	viper.SetDefault("redis.key_prefix", "rag")

	// 读取环境变量
	viper.SetEnvPrefix("RAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if env := os.Getenv("ENV"); env != "" {
		viper.Set("server.env", env)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		viper.Set("server.log_level", level)
	}
	if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
		viper.Set("ai.api_key", openaiKey)
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		viper.Set("ai.base_url", baseURL)
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		viper.Set("ai.model", model)
	}
	if embeddingModel := os.Getenv("OPENAI_EMBEDDING_MODEL"); embeddingModel != "" {
		viper.Set("ai.embedding_model", embeddingModel)
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		viper.Set("redis.addr", redisAddr)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		viper.Set("redis.password", redisPassword)
	}

	cfg := &Config{
		Server: ServerConfig{
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		AI: AIConfig{
			APIKey:         viper.GetString("ai.api_key"),
			BaseURL:        viper.GetString("ai.base_url"),
			Model:          viper.GetString("ai.model"),
			EmbeddingModel: viper.GetString("ai.embedding_model"),
			MaxTokens:      viper.GetInt("ai.max_tokens"),
			Temperature:    viper.GetFloat64("ai.temperature"),
			TimeoutSeconds: viper.GetInt("ai.timeout_seconds"),
		},
		RAG: RAGConfig{
			ChunkSize:    viper.GetInt("rag.chunk_size"),
			ChunkOverlap: viper.GetInt("rag.chunk_overlap"),
			TopK:         viper.GetInt("rag.top_k"),
		},
		Redis: RedisConfig{
			Addr:      viper.GetString("redis.addr"),
			Password:  viper.GetString("redis.password"),
			DB:        viper.GetInt("redis.db"),
			TTL:       viper.GetInt("redis.ttl"),
			KeyPrefix: viper.GetString("redis.key_prefix"),
		},
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Validate 校验配置完整性，缺少凭证或模型标识视为配置错误
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return apperrors.NewConfiguration("invalid configuration").WithCause(err)
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return apperrors.NewConfiguration(
			"chunk_overlap %d must be less than chunk_size %d",
			cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	return nil
}

// GetAppConfig 获取全局配置
func GetAppConfig() *Config {
	return AppConfig
}
