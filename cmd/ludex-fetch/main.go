// ludex-fetch pulls the game catalog from IGDB and stores the raw records
// as a timestamped JSON batch in the configured bucket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekstrand/ludex/internal/bucket"
	"github.com/ekstrand/ludex/internal/config"
	"github.com/ekstrand/ludex/internal/igdb"
)

func main() {
	limit := flag.Int("limit", 0, "Maximum number of games to fetch (0 = no limit)")
	filters := flag.String("filters", "", "Extra IGDB query filters (e.g. \"where rating > 70\")")
	flag.Parse()

	logger := log.New(os.Stderr, "[fetch] ", log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	client, err := igdb.NewClient(igdb.Config{
		ClientID:     cfg.IGDB.ClientID,
		ClientSecret: cfg.IGDB.ClientSecret,
		RateLimit:    cfg.IGDB.RateLimit,
		BatchSize:    cfg.IGDB.BatchSize,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create IGDB client: %v", err)
	}

	store, err := openBucket(cfg)
	if err != nil {
		logger.Fatalf("Failed to open bucket: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	games, err := client.GetAllGames(ctx, nil, *filters, *limit)
	if err != nil {
		logger.Fatalf("Fetch failed: %v", err)
	}
	logger.Printf("Fetched %d games in %s", len(games), time.Since(started).Round(time.Second))

	key, err := bucket.WriteRaw(ctx, store, cfg.Bucket.RawPrefix, games, time.Now())
	if err != nil {
		logger.Fatalf("Failed to store raw batch: %v", err)
	}
	logger.Printf("Stored raw batch at %s", key)
}

// openBucket opens the configured bucket backend.
func openBucket(cfg *config.Config) (bucket.Store, error) {
	if cfg.Bucket.Provider == "gcs" {
		return bucket.NewGCSStore(context.Background(), cfg.Bucket.GCSBucket)
	}
	return bucket.NewLocalStore(cfg.Bucket.LocalPath)
}
