package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aihub/rag-go/internal/chunkstore"
	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/rag"
)

func main() {
	question := flag.String("question", "", "question to answer")
	chunksFile := flag.String("chunks", "", "path to a JSON file holding the chunk pool")
	documentID := flag.String("document", "", "load the chunk pool of this document from redis")
	topK := flag.Int("top-k", 0, "number of chunks to retrieve (0 = config default)")
	flag.Parse()

	if *question == "" {
		log.Fatal("usage: rag -question <text> [-chunks file.json | -document id] [-top-k n]")
	}

	// .env 存在时加载，缺失不致命
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetAppConfig()

	if err := logger.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	container, err := di.BuildContainer()
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}

	err = container.Invoke(func(pipeline *rag.Pipeline, embedder rag.Embedder, store *chunkstore.RedisChunkStore) error {
		ctx := context.Background()

		chunkPool, err := loadChunkPool(ctx, *chunksFile, *documentID, store)
		if err != nil {
			return err
		}

		// 缺失嵌入的分块在检索前惰性补齐
		if err := embedMissing(ctx, embedder, chunkPool); err != nil {
			return err
		}

		k := *topK
		if k == 0 {
			k = cfg.RAG.TopK
		}

		result, err := pipeline.ProcessQuery(ctx, *question, chunkPool, k)
		if err != nil {
			return err
		}

		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	})
	if err != nil {
		logger.Error("query failed", zap.Error(err))
		os.Exit(1)
	}
}

// loadChunkPool 从JSON文件或Redis分块存储加载只读分块池
func loadChunkPool(ctx context.Context, chunksFile, documentID string, store *chunkstore.RedisChunkStore) ([]rag.Chunk, error) {
	if chunksFile != "" {
		data, err := os.ReadFile(chunksFile)
		if err != nil {
			return nil, err
		}
		var chunks []rag.Chunk
		if err := json.Unmarshal(data, &chunks); err != nil {
			return nil, err
		}
		return chunks, nil
	}
	if documentID != "" {
		return store.LoadDocumentChunks(ctx, documentID)
	}
	return nil, fmt.Errorf("either -chunks or -document is required")
}

// embedMissing 为没有嵌入向量的分块批量生成向量
func embedMissing(ctx context.Context, embedder rag.Embedder, chunks []rag.Chunk) error {
	var texts []string
	var indexes []int
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			texts = append(texts, chunk.Text)
			indexes = append(indexes, i)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	for j, idx := range indexes {
		chunks[idx].Embedding = embeddings[j]
	}
	return nil
}
