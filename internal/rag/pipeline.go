package rag

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/metrics"
)

// Pipeline 单次查询的RAG编排：嵌入问题 → 检索分块 → 合成答案。
// 除不可变的依赖句柄外不跨调用持有状态，多个查询可并发执行。
// 分块池由调用方按次传入，流水线只读不改。
type Pipeline struct {
	embedder    Embedder
	synthesizer *AnswerSynthesizer
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewPipeline 创建查询流水线。metrics可为nil。
func NewPipeline(embedder Embedder, synthesizer *AnswerSynthesizer, m *metrics.Metrics, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		embedder:    embedder,
		synthesizer: synthesizer,
		metrics:     m,
		logger:      log,
	}
}

// ProcessQuery 端到端处理一个问题。任一阶段失败立即中止，
// 不返回部分结果，错误带着出错阶段名原样上抛。
// 取消在阶段边界生效，被取消的查询整体废弃，可从头重试。
func (p *Pipeline) ProcessQuery(ctx context.Context, question string, chunkPool []Chunk, topK int) (*AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperrors.TagStage(
			apperrors.NewInvalidInput("question is empty"), StageInit)
	}
	if topK < 0 {
		return nil, apperrors.TagStage(
			apperrors.NewInvalidInput("top_k must be non-negative, got %d", topK), StageInit)
	}

	// EMBED_QUERY
	if err := ctx.Err(); err != nil {
		return nil, apperrors.TagStage(err, StageEmbedQuery)
	}
	start := time.Now()
	queryEmbedding, err := p.embedder.Embed(ctx, question)
	if err != nil {
		p.metrics.ObserveProviderError("embedding")
		p.metrics.ObserveQuery("failed")
		p.logger.Error("query embedding failed", zap.Error(err))
		return nil, apperrors.TagStage(err, StageEmbedQuery)
	}
	p.metrics.ObserveStage(StageEmbedQuery, time.Since(start))

	// RETRIEVE
	if err := ctx.Err(); err != nil {
		return nil, apperrors.TagStage(err, StageRetrieve)
	}
	start = time.Now()
	relevantChunks, err := Retrieve(queryEmbedding, chunkPool, topK)
	if err != nil {
		p.metrics.ObserveQuery("failed")
		return nil, apperrors.TagStage(err, StageRetrieve)
	}
	p.metrics.ObserveStage(StageRetrieve, time.Since(start))
	p.metrics.ObserveRetrievedChunks(len(relevantChunks))

	// SYNTHESIZE
	if err := ctx.Err(); err != nil {
		return nil, apperrors.TagStage(err, StageSynthesize)
	}
	start = time.Now()
	result, err := p.synthesizer.GenerateAnswer(ctx, question, relevantChunks, "")
	if err != nil {
		p.metrics.ObserveProviderError("generation")
		p.metrics.ObserveQuery("failed")
		p.logger.Error("answer synthesis failed", zap.Error(err))
		return nil, apperrors.TagStage(err, StageSynthesize)
	}
	p.metrics.ObserveStage(StageSynthesize, time.Since(start))

	p.metrics.ObserveQuery("success")
	p.logger.Info("query processed",
		zap.Int("chunk_pool", len(chunkPool)),
		zap.Int("retrieved", len(relevantChunks)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}
