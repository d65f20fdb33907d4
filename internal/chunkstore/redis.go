package chunkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aihub/rag-go/internal/config"
	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/rag"
)

// RedisChunkStore Redis分块存储。入库路径写入分块，查询路径把一个文档的
// 分块整体加载为只读分块池交给流水线，流水线本身不落任何数据。
type RedisChunkStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisChunkStore 创建Redis分块存储
func NewRedisChunkStore(cfg config.RedisConfig, log *zap.Logger) *RedisChunkStore {
	if log == nil {
		log = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl == 0 {
		ttl = time.Hour
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "rag"
	}

	return &RedisChunkStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: prefix,
		logger:    log,
	}
}

// StoreChunks 把一个文档的分块写入Redis：每个分块一个Hash，
// 文档维护一个chunk_id集合作为索引
func (s *RedisChunkStore) StoreChunks(ctx context.Context, chunks []rag.Chunk) error {
	for _, chunk := range chunks {
		key := s.chunkKey(chunk.DocumentID, chunk.ChunkID)

		data := map[string]interface{}{
			"chunk_id":    chunk.ChunkID,
			"document_id": chunk.DocumentID,
			"text":        chunk.Text,
		}
		if len(chunk.Embedding) > 0 {
			embeddingJSON, err := json.Marshal(chunk.Embedding)
			if err != nil {
				return apperrors.NewChunkStore("failed to encode embedding", err)
			}
			data["embedding"] = string(embeddingJSON)
		}
		if chunk.Metadata != nil {
			metadataJSON, _ := json.Marshal(chunk.Metadata)
			data["metadata"] = string(metadataJSON)
		}

		if err := s.client.HSet(ctx, key, data).Err(); err != nil {
			return apperrors.NewChunkStore("failed to store chunk", err)
		}
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to set chunk TTL", zap.String("key", key), zap.Error(err))
		}

		indexKey := s.documentChunksKey(chunk.DocumentID)
		if err := s.client.SAdd(ctx, indexKey, chunk.ChunkID).Err(); err != nil {
			return apperrors.NewChunkStore("failed to index chunk", err)
		}
		if err := s.client.Expire(ctx, indexKey, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to set index TTL", zap.String("key", indexKey), zap.Error(err))
		}
	}

	s.logger.Info("chunks stored", zap.Int("count", len(chunks)))
	return nil
}

// LoadDocumentChunks 加载一个文档的全部分块。结果按metadata里的
// chunk_index升序排列，保证分块池顺序确定。
func (s *RedisChunkStore) LoadDocumentChunks(ctx context.Context, documentID string) ([]rag.Chunk, error) {
	indexKey := s.documentChunksKey(documentID)
	chunkIDs, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, apperrors.NewChunkStore("failed to list document chunks", err)
	}

	chunks := make([]rag.Chunk, 0, len(chunkIDs))
	for _, chunkID := range chunkIDs {
		fields, err := s.client.HGetAll(ctx, s.chunkKey(documentID, chunkID)).Result()
		if err != nil {
			return nil, apperrors.NewChunkStore("failed to load chunk", err)
		}
		if len(fields) == 0 {
			// 分块已过期，索引项跳过
			continue
		}

		chunk := rag.Chunk{
			ChunkID:    fields["chunk_id"],
			DocumentID: fields["document_id"],
			Text:       fields["text"],
		}
		if embeddingJSON := fields["embedding"]; embeddingJSON != "" {
			var embedding []float32
			if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err == nil {
				chunk.Embedding = embedding
			}
		}
		if metadataJSON := fields["metadata"]; metadataJSON != "" {
			var metadata map[string]interface{}
			if err := json.Unmarshal([]byte(metadataJSON), &metadata); err == nil {
				chunk.Metadata = metadata
			}
		}
		chunks = append(chunks, chunk)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunkIndexOf(chunks[i]) < chunkIndexOf(chunks[j])
	})

	return chunks, nil
}

// DeleteDocument 删除一个文档的全部分块及索引
func (s *RedisChunkStore) DeleteDocument(ctx context.Context, documentID string) error {
	indexKey := s.documentChunksKey(documentID)
	chunkIDs, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return apperrors.NewChunkStore("failed to list document chunks", err)
	}

	keys := make([]string, 0, len(chunkIDs)+1)
	for _, chunkID := range chunkIDs {
		keys = append(keys, s.chunkKey(documentID, chunkID))
	}
	keys = append(keys, indexKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewChunkStore("failed to delete document chunks", err)
	}
	return nil
}

// Ping 检查Redis连通性
func (s *RedisChunkStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭Redis连接
func (s *RedisChunkStore) Close() error {
	return s.client.Close()
}

func (s *RedisChunkStore) chunkKey(documentID, chunkID string) string {
	return fmt.Sprintf("%s:chunk:%s:%s", s.keyPrefix, documentID, chunkID)
}

func (s *RedisChunkStore) documentChunksKey(documentID string) string {
	return fmt.Sprintf("%s:doc:%s:chunks", s.keyPrefix, documentID)
}

func chunkIndexOf(chunk rag.Chunk) int {
	if chunk.Metadata == nil {
		return 0
	}
	switch v := chunk.Metadata["chunk_index"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
