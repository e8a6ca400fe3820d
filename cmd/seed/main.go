package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mkrogh/catalog-service/internal/config"
	"github.com/mkrogh/catalog-service/internal/db"
	"github.com/mkrogh/catalog-service/internal/model"
	"github.com/mkrogh/catalog-service/internal/repository"
	"github.com/mkrogh/catalog-service/internal/service"
	"github.com/mkrogh/catalog-service/internal/storage"
)

type seedItem struct {
	Category string
	UserID   string
	ItemDesc string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := conn.AutoMigrate(&model.Item{}, &model.Attachment{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := repository.NewItemRepository(conn)

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("items already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := service.NewItemService(repo, storage.NewLocalSink(cfg.ItemsDir), logger)

	for _, s := range buildSeedItems() {
		id, err := svc.Create(ctx, service.Submission{
			Category: s.Category,
			UserID:   s.UserID,
			ItemDesc: s.ItemDesc,
		})
		if err != nil {
			return fmt.Errorf("seeding %q: %w", s.ItemDesc, err)
		}
		log.Printf("seeded item %d (%s)", id, s.ItemDesc)
	}

	log.Printf("seed completed")
	return nil
}

func buildSeedItems() []seedItem {
	return []seedItem{
		{Category: "Hatte", UserID: "seed", ItemDesc: "Sort tophat"},
		{Category: "Furniture", UserID: "seed", ItemDesc: "Oak writing desk"},
		{Category: "Electronics", UserID: "seed", ItemDesc: "Portable radio"},
		{Category: "Books", UserID: "seed", ItemDesc: "Atlas of the northern seas"},
	}
}
