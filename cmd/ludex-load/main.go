// ludex-load reads a cleaned snapshot from the bucket and loads it into the
// configured warehouse, replacing all existing rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ekstrand/ludex/internal/bucket"
	"github.com/ekstrand/ludex/internal/config"
	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/internal/storage/postgres"
	"github.com/ekstrand/ludex/internal/storage/sqlite"
)

func main() {
	run := flag.String("run", "", "Cleaning run timestamp to load (default: most recent run)")
	flag.Parse()

	logger := log.New(os.Stderr, "[load] ", log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	store, err := openBucket(cfg)
	if err != nil {
		logger.Fatalf("Failed to open bucket: %v", err)
	}

	warehouse, err := openWarehouse(cfg)
	if err != nil {
		logger.Fatalf("Failed to open warehouse: %v", err)
	}
	defer warehouse.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	snapshot, err := bucket.ReadSnapshot(ctx, store, cfg.Bucket.CleanedPrefix, *run)
	if err != nil {
		logger.Fatalf("Failed to read cleaned snapshot: %v", err)
	}

	if err := warehouse.LoadSnapshot(ctx, snapshot); err != nil {
		logger.Fatalf("Failed to load snapshot: %v", err)
	}

	counts := snapshot.Counts()
	logger.Printf("Warehouse loaded: %d games, %d relationships, %d groups, %d members",
		counts["games"], counts["game_relationships"], counts["game_groups"], counts["game_group_members"])
}

// openBucket opens the configured bucket backend.
func openBucket(cfg *config.Config) (bucket.Store, error) {
	if cfg.Bucket.Provider == "gcs" {
		return bucket.NewGCSStore(context.Background(), cfg.Bucket.GCSBucket)
	}
	return bucket.NewLocalStore(cfg.Bucket.LocalPath)
}

// openWarehouse opens the configured warehouse backend.
func openWarehouse(cfg *config.Config) (storage.Warehouse, error) {
	switch cfg.Warehouse.Engine {
	case "postgres":
		return postgres.NewStore(cfg.Warehouse.PostgresDSN)
	case "sqlite", "":
		return sqlite.NewStore(filepath.Join(cfg.Warehouse.DataPath, "ludex.db"))
	default:
		return nil, fmt.Errorf("unknown warehouse engine %q", cfg.Warehouse.Engine)
	}
}
