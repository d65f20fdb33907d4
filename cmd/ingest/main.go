package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aihub/rag-go/internal/chunkstore"
	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/rag"
)

func main() {
	filePath := flag.String("file", "", "path to a UTF-8 text file to ingest")
	documentID := flag.String("document-id", "", "document id (generated when empty)")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("usage: ingest -file <path> [-document-id id]")
	}

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

	err = container.Invoke(func(ingestor *rag.Ingestor, store *chunkstore.RedisChunkStore) error {
		ctx := context.Background()

		data, err := os.ReadFile(*filePath)
		if err != nil {
			return err
		}

		docID := *documentID
		if docID == "" {
			docID = uuid.NewString()
		}

		chunks, err := ingestor.SegmentDocument(ctx, docID, string(data), map[string]interface{}{
			"filename": filepath.Base(*filePath),
		})
		if err != nil {
			return err
		}

		if err := store.StoreChunks(ctx, chunks); err != nil {
			return err
		}

		logger.Info("document ingested",
			zap.String("document_id", docID),
			zap.Int("chunks", len(chunks)))
		return nil
	})
	if err != nil {
		logger.Error("ingest failed", zap.Error(err))
		os.Exit(1)
	}
}
