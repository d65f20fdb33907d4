package rag

import (
	apperrors "github.com/aihub/rag-go/internal/errors"
)

// Chunker 文本分块器，滑动窗口按rune切分
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker 创建分块器。chunkSize必须为正，overlap必须满足 0 <= overlap < chunkSize，
// 否则返回输入错误，避免步长非正导致死循环。
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, apperrors.NewInvalidInput("chunk_size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, apperrors.NewInvalidInput(
			"overlap must satisfy 0 <= overlap < chunk_size, got overlap=%d chunk_size=%d",
			overlap, chunkSize)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
	}, nil
}

// Split 将文本切分为重叠窗口。窗口起点从0开始，每次前进 chunkSize-overlap，
// 末尾窗口允许不足chunkSize。窗口完全重叠时也不去重、不合并。
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return []string{}
	}

	runes := []rune(text)
	textLen := len(runes)

	stride := c.chunkSize - c.chunkOverlap
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	for start := 0; start < textLen; start += stride {
		end := start + c.chunkSize
		if end > textLen {
			end = textLen
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}

// ChunkSize 返回配置的窗口长度
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap 返回配置的窗口重叠长度
func (c *Chunker) Overlap() int {
	return c.chunkOverlap
}
