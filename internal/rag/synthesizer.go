package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// 默认系统提示词：要求严格基于上下文作答、无法回答时明确说明、引用来源编号
const defaultSystemPrompt = "You are a helpful AI assistant that answers questions based on the provided context. " +
	"Use the context to answer the question accurately. If the answer cannot be found in " +
	"the context, say so. Cite the source numbers when referencing information."

// 来源预览截断长度（按rune计）
const previewLength = 200

// AnswerSynthesizer 基于检索上下文合成答案
type AnswerSynthesizer struct {
	generator Generator
	logger    *zap.Logger
}

// NewAnswerSynthesizer 创建答案合成器
func NewAnswerSynthesizer(generator Generator, log *zap.Logger) *AnswerSynthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnswerSynthesizer{
		generator: generator,
		logger:    log,
	}
}

// GenerateAnswer 按检索顺序拼接上下文并调用生成服务。
// contextChunks为空时仍会带着空上下文发起请求，sources返回空列表。
// systemPrompt为空时使用默认提示词。
func (s *AnswerSynthesizer) GenerateAnswer(ctx context.Context, question string, contextChunks []Chunk, systemPrompt string) (*AnswerResult, error) {
	contextParts := make([]string, 0, len(contextChunks))
	sources := make([]Source, 0, len(contextChunks))

	for i, chunk := range contextChunks {
		// 来源标号从1开始，保持检索顺序，不再重排
		contextParts = append(contextParts, fmt.Sprintf("[Source %d]: %s", i+1, chunk.Text))
		sources = append(sources, Source{
			ChunkID:     chunk.ChunkID,
			DocumentID:  chunk.DocumentID,
			TextPreview: truncatePreview(chunk.Text),
			Metadata:    chunk.Metadata,
		})
	}

	contextBlock := strings.Join(contextParts, "\n\n")

	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	messages := []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)},
	}

	answer, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("synthesized answer",
		zap.Int("context_chunks", len(contextChunks)),
		zap.Int("answer_length", len(answer)))

	return &AnswerResult{
		Answer:     answer,
		Sources:    sources,
		Confidence: answerConfidence(answer),
	}, nil
}

// truncatePreview 截取来源预览：前200个rune，超长追加省略号。
// 只截断预览展示，分块全文不动。
func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

// answerConfidence 置信度启发式：min(1.0, 答案长度/500)。
// 只是基于长度的占位指标，不是校准过的概率，替换公式前保持原样。
func answerConfidence(answer string) float64 {
	confidence := float64(len([]rune(answer))) / 500.0
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}
