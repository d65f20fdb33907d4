package rag

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ingestor 文档入库前的分块与向量化。产出的分块池供检索端只读消费。
type Ingestor struct {
	chunker  *Chunker
	embedder Embedder
	logger   *zap.Logger
}

// NewIngestor 创建文档切分器
func NewIngestor(chunker *Chunker, embedder Embedder, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		chunker:  chunker,
		embedder: embedder,
		logger:   log,
	}
}

// SegmentDocument 将文档文本切分为分块并批量生成嵌入向量。
// 向量顺序与分块顺序严格对应，每个分块分配uuid作为chunk_id。
func (ing *Ingestor) SegmentDocument(ctx context.Context, documentID, text string, metadata map[string]interface{}) ([]Chunk, error) {
	texts := ing.chunker.Split(text)
	if len(texts) == 0 {
		return []Chunk{}, nil
	}

	embeddings, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, len(texts))
	for i, chunkText := range texts {
		chunkMeta := map[string]interface{}{
			"chunk_index": i,
		}
		for k, v := range metadata {
			chunkMeta[k] = v
		}
		chunks[i] = Chunk{
			ChunkID:    uuid.NewString(),
			DocumentID: documentID,
			Text:       chunkText,
			Embedding:  embeddings[i],
			Metadata:   chunkMeta,
		}
	}

	ing.logger.Info("document segmented",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", ing.chunker.ChunkSize()),
		zap.Int("overlap", ing.chunker.Overlap()))

	return chunks, nil
}
