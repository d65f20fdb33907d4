package rag

import (
	"math"
	"sort"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

// CosineSimilarity 计算余弦相似度 dot(a,b)/(|a|*|b|)。
// 任一向量模长为零时返回0.0而非报错，这类配对排到最低位。
// 维度不一致时点积按较短向量截断，模长仍按各自全长计算。
func CosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}

	normA := vectorNorm(a)
	normB := vectorNorm(b)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (normA * normB)
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Retrieve 按余弦相似度对候选分块排序，返回前topK个。
// 没有嵌入向量的分块在打分前被静默剔除。相同分数保持
// candidates中的原始相对顺序（稳定排序），保证结果确定。
// 纯函数，不修改输入，可在不相交输入上并发调用。
func Retrieve(queryEmbedding []float32, candidates []Chunk, topK int) ([]Chunk, error) {
	if topK < 0 {
		return nil, apperrors.NewInvalidInput("top_k must be non-negative, got %d", topK)
	}

	type scoredChunk struct {
		chunk Chunk
		score float64
	}

	scored := make([]scoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		if len(chunk.Embedding) == 0 {
			continue
		}
		scored = append(scored, scoredChunk{
			chunk: chunk,
			score: CosineSimilarity(queryEmbedding, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if topK > len(scored) {
		topK = len(scored)
	}

	results := make([]Chunk, 0, topK)
	for _, item := range scored[:topK] {
		results = append(results, item.chunk)
	}
	return results, nil
}
