// ludex-web serves the catalog REST API and the pipeline progress WebSocket
// over the configured warehouse.
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
	"time"

	"github.com/ekstrand/ludex/internal/bucket"
	"github.com/ekstrand/ludex/internal/config"
	"github.com/ekstrand/ludex/internal/recommend"
	"github.com/ekstrand/ludex/internal/server"
	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/internal/storage/postgres"
	"github.com/ekstrand/ludex/internal/storage/sqlite"
	"github.com/ekstrand/ludex/web/handlers"
)

func main() {
	noRecommend := flag.Bool("no-recommendations", false, "Disable the recommendation index")
	flag.Parse()

	logger := log.New(os.Stderr, "[web] ", log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	catalog, err := openCatalog(cfg)
	if err != nil {
		logger.Fatalf("Failed to open warehouse: %v", err)
	}
	defer catalog.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var recommender *recommend.Recommender
	if !*noRecommend {
		recommender = buildRecommender(ctx, cfg, catalog, logger)
	}

	var index handlers.SimilarityIndex
	if recommender != nil {
		index = recommender
	}

	addr, _, err := server.Start(ctx, cfg, catalog, index)
	if err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
	logger.Printf("Ludex API running at http://%s", addr)

	<-ctx.Done()
	logger.Println("Shutting down gracefully...")
	time.Sleep(1 * time.Second) // give time for connections to close
}

// openCatalog opens the configured warehouse backend for reading.
func openCatalog(cfg *config.Config) (storage.Catalog, error) {
	switch cfg.Warehouse.Engine {
	case "postgres":
		return postgres.NewStore(cfg.Warehouse.PostgresDSN)
	case "sqlite", "":
		return sqlite.NewStore(filepath.Join(cfg.Warehouse.DataPath, "ludex.db"))
	default:
		return nil, fmt.Errorf("unknown warehouse engine %q", cfg.Warehouse.Engine)
	}
}

// buildRecommender constructs the similarity index from the most recent raw
// batch in the bucket. The index is optional: when no raw data is available
// the API serves without recommendations.
func buildRecommender(ctx context.Context, cfg *config.Config, catalog storage.Catalog, logger *log.Logger) *recommend.Recommender {
	store, err := openBucket(cfg)
	if err != nil {
		logger.Printf("Warning: recommendation index disabled, bucket unavailable: %v", err)
		return nil
	}

	source := &bucket.RawSource{Store: store, Prefix: cfg.Bucket.RawPrefix}
	games, err := source.Extract(ctx)
	if err != nil {
		logger.Printf("Warning: recommendation index disabled, no raw batch: %v", err)
		return nil
	}

	recommender, err := recommend.NewRecommender(games, recommend.Options{})
	if err != nil {
		logger.Printf("Warning: recommendation index disabled: %v", err)
		return nil
	}
	logger.Printf("Recommendation index ready: %d games, %d features",
		recommender.Size(), recommender.Dimension())

	persistEmbeddings(ctx, catalog, recommender, logger)
	return recommender
}

// persistEmbeddings stores the feature vectors in the warehouse when the
// backend supports them. Failures are logged and do not affect serving.
func persistEmbeddings(ctx context.Context, catalog storage.Catalog, recommender *recommend.Recommender, logger *log.Logger) {
	pg, ok := catalog.(*postgres.Store)
	if !ok || !pg.PgvectorAvailable() {
		return
	}

	stored := 0
	for _, gameID := range recommender.GameIDs() {
		vec, err := recommender.Vector(gameID)
		if err != nil {
			continue
		}
		if err := pg.StoreEmbedding(ctx, gameID, vec, recommend.ModelName); err != nil {
			logger.Printf("Warning: failed to store embedding for %s: %v", gameID, err)
			continue
		}
		stored++
	}
	logger.Printf("Persisted %d embeddings", stored)
}

// openBucket opens the configured bucket backend.
func openBucket(cfg *config.Config) (bucket.Store, error) {
	if cfg.Bucket.Provider == "gcs" {
		return bucket.NewGCSStore(context.Background(), cfg.Bucket.GCSBucket)
	}
	return bucket.NewLocalStore(cfg.Bucket.LocalPath)
}
