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

// Generator 定义文本生成接口
type Generator interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// OpenAIGenerator 使用OpenAI Chat Completion API。
// 模型、温度、最大token数来自配置，构造后不可变。
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewOpenAIGenerator 创建OpenAI生成服务客户端
func NewOpenAIGenerator(cfg config.AIConfig) (*OpenAIGenerator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, apperrors.NewConfiguration("generation provider api key is missing")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, apperrors.NewConfiguration("generation model is missing")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// Complete 调用生成服务返回单条文本。失败不做本地重试，原样上抛。
func (g *OpenAIGenerator) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    chatMessages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", apperrors.NewGenerationProvider(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewGenerationProvider(errors.New("generation response has no choices"))
	}

	return resp.Choices[0].Message.Content, nil
}
