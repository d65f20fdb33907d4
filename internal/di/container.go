package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/aihub/rag-go/internal/chunkstore"
	"github.com/aihub/rag-go/internal/config"
	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/aihub/rag-go/internal/rag"
)

// BuildContainer 构建依赖注入容器。所有组件显式构造、配置不可变，
// 各自独立配置的流水线可以共存，不依赖包级单例客户端。
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		func() (*config.Config, error) {
			cfg := config.GetAppConfig()
			if cfg == nil {
				return nil, apperrors.NewConfiguration("config not loaded")
			}
			return cfg, nil
		},
		func() *zap.Logger {
			return logger.GetLogger()
		},
		func() *metrics.Metrics {
			return metrics.NewMetrics()
		},
		func(cfg *config.Config) (rag.Embedder, error) {
			return rag.NewOpenAIEmbedder(cfg.AI)
		},
		func(cfg *config.Config) (rag.Generator, error) {
			return rag.NewOpenAIGenerator(cfg.AI)
		},
		func(cfg *config.Config) (*rag.Chunker, error) {
			return rag.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
		},
		func(generator rag.Generator, log *zap.Logger) *rag.AnswerSynthesizer {
			return rag.NewAnswerSynthesizer(generator, log)
		},
		func(chunker *rag.Chunker, embedder rag.Embedder, log *zap.Logger) *rag.Ingestor {
			return rag.NewIngestor(chunker, embedder, log)
		},
		func(cfg *config.Config, log *zap.Logger) *chunkstore.RedisChunkStore {
			return chunkstore.NewRedisChunkStore(cfg.Redis, log)
		},
		func(embedder rag.Embedder, synthesizer *rag.AnswerSynthesizer, m *metrics.Metrics, log *zap.Logger) *rag.Pipeline {
			return rag.NewPipeline(embedder, synthesizer, m, log)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
