package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

func TestNewChunkerInvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.chunkSize, tt.overlap)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)

	chunks := chunker.Split("")
	assert.Empty(t, chunks)
}

func TestSplitOverlappingWindows(t *testing.T) {
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)

	text := strings.Repeat("a", 2500)
	chunks := chunker.Split(text)

	// 窗口起点 0, 800, 1600, 2400；末尾窗口不足chunkSize
	require.Len(t, chunks, 4)
	assert.Equal(t, 1000, len(chunks[0]))
	assert.Equal(t, 1000, len(chunks[1]))
	assert.Equal(t, 900, len(chunks[2]))
	assert.Equal(t, 100, len(chunks[3]))
}

func TestSplitCoversEveryRune(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		textLen   int
	}{
		{"no overlap", 10, 0, 95},
		{"small overlap", 10, 3, 100},
		{"large overlap", 100, 99, 250},
		{"text shorter than window", 1000, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunker, err := NewChunker(tt.chunkSize, tt.overlap)
			require.NoError(t, err)

			text := strings.Repeat("x", tt.textLen)
			chunks := chunker.Split(text)
			require.NotEmpty(t, chunks)

			// 相邻窗口起点间隔恰好为 chunkSize - overlap
			stride := tt.chunkSize - tt.overlap
			covered := 0
			for i, chunk := range chunks {
				start := i * stride
				assert.LessOrEqual(t, start, covered, "window %d leaves a gap", i)
				end := start + len([]rune(chunk))
				if end > covered {
					covered = end
				}
			}
			assert.Equal(t, tt.textLen, covered)
		})
	}
}

func TestSplitNoDeduplication(t *testing.T) {
	chunker, err := NewChunker(4, 3)
	require.NoError(t, err)

	// 完全重叠的窗口也原样保留
	chunks := chunker.Split("aaaaaa")
	require.Len(t, chunks, 6)
	assert.Equal(t, "aaaa", chunks[0])
	assert.Equal(t, "aaaa", chunks[1])
	assert.Equal(t, "a", chunks[5])
}

func TestSplitMultibyteRunes(t *testing.T) {
	chunker, err := NewChunker(3, 1)
	require.NoError(t, err)

	chunks := chunker.Split("知识库检索增强")
	require.Len(t, chunks, 4)
	assert.Equal(t, "知识库", chunks[0])
	assert.Equal(t, "库检索", chunks[1])
	assert.Equal(t, "索增强", chunks[2])
	assert.Equal(t, "强", chunks[3])
}
