package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aihub/rag-go/internal/config"
	apperrors "github.com/aihub/rag-go/internal/errors"
)

// Embedder 定义文本向量化接口
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder 使用OpenAI Embedding API
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
}

// NewOpenAIEmbedder 创建OpenAI嵌入向量生成器。
// 凭证或模型缺失在构造期报配置错误，不做延迟失败。
func NewOpenAIEmbedder(cfg config.AIConfig) (*OpenAIEmbedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, apperrors.NewConfiguration("embedding provider api key is missing")
	}
	model := strings.TrimSpace(cfg.EmbeddingModel)
	if model == "" {
		return nil, apperrors.NewConfiguration("embedding model is missing")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	dims, ok := embeddingDimensions[model]
	if !ok {
		dims = 1536
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dims,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// Embed 生成单条文本的嵌入向量
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch 批量生成嵌入向量，输出顺序与输入严格对应
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		// 不做本地重试，失败原样上抛
		return nil, apperrors.NewEmbeddingProvider(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, apperrors.NewEmbeddingProvider(
			errors.New("embedding response count does not match input count"))
	}

	vectors := make([][]float32, len(texts))
	for i, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		embedding := make([]float32, len(item.Embedding))
		copy(embedding, item.Embedding)
		vectors[idx] = embedding
	}
	return vectors, nil
}

// Dimensions 返回嵌入向量维度
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
