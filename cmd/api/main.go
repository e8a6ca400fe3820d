package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	gcs "cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/mkrogh/catalog-service/internal/config"
	"github.com/mkrogh/catalog-service/internal/db"
	"github.com/mkrogh/catalog-service/internal/model"
	"github.com/mkrogh/catalog-service/internal/server"
	"github.com/mkrogh/catalog-service/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(&model.Item{}, &model.Attachment{}); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var sink storage.BlobSink
	if cfg.StorageBucket != "" {
		client, err := gcs.NewClient(context.Background())
		if err != nil {
			log.Fatalf("storage client error: %v", err)
		}
		defer client.Close()
		sink = storage.NewGCSSink(client, cfg.StorageBucket)
	} else {
		sink = storage.NewLocalSink(cfg.ItemsDir)
	}

	srv := server.New(conn, sink, logger)

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
