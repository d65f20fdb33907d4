package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

func newTestPipeline(embedder Embedder, gen Generator) *Pipeline {
	return NewPipeline(embedder, NewAnswerSynthesizer(gen, nil), nil, nil)
}

func TestProcessQueryEndToEnd(t *testing.T) {
	embedder := &fakeEmbedder{
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}
	gen := &fakeGenerator{
		completeFn: func(ctx context.Context, messages []ChatMessage) (string, error) {
			return "grounded answer", nil
		},
	}
	pipeline := newTestPipeline(embedder, gen)

	chunkPool := []Chunk{
		{ChunkID: "1", DocumentID: "doc1", Text: "relevant", Embedding: []float32{1, 0, 0}},
		{ChunkID: "2", DocumentID: "doc2", Text: "irrelevant", Embedding: []float32{0, 1, 0}},
	}

	result, err := pipeline.ProcessQuery(context.Background(), "Question?", chunkPool, 1)
	require.NoError(t, err)

	assert.Equal(t, "grounded answer", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "1", result.Sources[0].ChunkID)

	// 问题文本被送去嵌入，生成端只收到检索出的分块
	assert.Equal(t, []string{"Question?"}, embedder.calls)
	assert.Contains(t, gen.calls[0][1].Content, "relevant")
	assert.NotContains(t, gen.calls[0][1].Content, "irrelevant")
}

func TestProcessQueryEmptyQuestion(t *testing.T) {
	embedder := &fakeEmbedder{}
	pipeline := newTestPipeline(embedder, &fakeGenerator{})

	_, err := pipeline.ProcessQuery(context.Background(), "  ", nil, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
	assert.Equal(t, StageInit, apperrors.StageOf(err))
	assert.Empty(t, embedder.calls)
}

func TestProcessQueryNegativeTopK(t *testing.T) {
	pipeline := newTestPipeline(&fakeEmbedder{}, &fakeGenerator{})

	_, err := pipeline.ProcessQuery(context.Background(), "q", nil, -3)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
	assert.Equal(t, StageInit, apperrors.StageOf(err))
}

func TestProcessQueryEmbeddingFailure(t *testing.T) {
	cause := errors.New("connection refused")
	embedder := &fakeEmbedder{
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, apperrors.NewEmbeddingProvider(cause)
		},
	}
	gen := &fakeGenerator{}
	pipeline := newTestPipeline(embedder, gen)

	chunkPool := []Chunk{{ChunkID: "1", Embedding: []float32{1}}}

	_, err := pipeline.ProcessQuery(context.Background(), "q", chunkPool, 5)
	require.Error(t, err)

	// 嵌入失败立即中止：错误带EMBED_QUERY阶段标记，检索与合成都不执行
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEmbeddingProvider))
	assert.Equal(t, StageEmbedQuery, apperrors.StageOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Empty(t, gen.calls)
}

func TestProcessQueryGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{
		completeFn: func(ctx context.Context, messages []ChatMessage) (string, error) {
			return "", apperrors.NewGenerationProvider(errors.New("model overloaded"))
		},
	}
	pipeline := newTestPipeline(&fakeEmbedder{}, gen)

	_, err := pipeline.ProcessQuery(context.Background(), "q", nil, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenerationProvider))
	assert.Equal(t, StageSynthesize, apperrors.StageOf(err))
}

func TestProcessQueryCancelledContext(t *testing.T) {
	embedder := &fakeEmbedder{}
	pipeline := newTestPipeline(embedder, &fakeGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 取消在阶段边界生效，不会再调外部服务
	_, err := pipeline.ProcessQuery(ctx, "q", nil, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, embedder.calls)
}

func TestProcessQueryEmptyPool(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline := newTestPipeline(&fakeEmbedder{}, gen)

	// 空分块池不报错：带空上下文合成，sources为空
	result, err := pipeline.ProcessQuery(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	require.Len(t, gen.calls, 1)
}

func TestProcessQueryDoesNotMutatePool(t *testing.T) {
	pipeline := newTestPipeline(&fakeEmbedder{}, &fakeGenerator{})

	chunkPool := []Chunk{
		{ChunkID: "1", Text: "one", Embedding: []float32{0, 1, 0}},
		{ChunkID: "2", Text: "two", Embedding: []float32{1, 0, 0}},
	}

	_, err := pipeline.ProcessQuery(context.Background(), "q", chunkPool, 2)
	require.NoError(t, err)

	assert.Equal(t, "1", chunkPool[0].ChunkID)
	assert.Equal(t, "2", chunkPool[1].ChunkID)
}
