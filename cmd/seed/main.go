// Command seed creates (or resets) the local store and fills it with
// the demo catalog.
package main

import (
	"context"
	"log"

	"github.com/mkravets/shopcore/internal/config"
	"github.com/mkravets/shopcore/internal/logging"
	"github.com/mkravets/shopcore/internal/repo"
	"github.com/mkravets/shopcore/internal/seed"
	"github.com/mkravets/shopcore/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), logger)

	s, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("store close failed", "error", err)
		}
	}()

	r := repo.New(s, cfg)
	if err := seed.Apply(ctx, r); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	logger.Info("catalog seeded",
		"path", cfg.DatabasePath,
		"categories", len(seed.Categories()),
		"products", len(seed.Products()),
	)
}
