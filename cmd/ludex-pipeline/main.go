// ludex-pipeline runs the cleaning pipeline over a stored raw batch and
// archives the cleaned snapshot back into the bucket as one JSON file per
// warehouse table.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ekstrand/ludex/internal/bucket"
	"github.com/ekstrand/ludex/internal/config"
	"github.com/ekstrand/ludex/internal/engine"
)

// logNotifier prints pipeline progress to the process log.
type logNotifier struct {
	logger *log.Logger
}

func (n *logNotifier) Notify(event engine.ProgressEvent) {
	if len(event.Counts) > 0 {
		n.logger.Printf("[%s] %s %v", event.Stage, event.Message, event.Counts)
		return
	}
	n.logger.Printf("[%s] %s", event.Stage, event.Message)
}

func main() {
	inputKey := flag.String("input", "", "Raw batch object key (default: most recent batch)")
	flag.Parse()

	logger := log.New(os.Stderr, "[pipeline] ", log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	rules, err := config.LoadNamingRules(cfg.Pipeline.NamingRulesPath)
	if err != nil {
		logger.Fatalf("Failed to load naming rules: %v", err)
	}

	store, err := openBucket(cfg)
	if err != nil {
		logger.Fatalf("Failed to open bucket: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source := &bucket.RawSource{Store: store, Prefix: cfg.Bucket.RawPrefix, Key: *inputKey}
	sink := &bucket.SnapshotSink{Store: store, Prefix: cfg.Bucket.CleanedPrefix}

	pipeline := engine.NewPipeline(source, sink, engine.NewCanonicalizer(rules), logger, &logNotifier{logger: logger})
	snapshot, err := pipeline.Run(ctx)
	if err != nil {
		logger.Fatalf("Pipeline run failed: %v", err)
	}

	counts := snapshot.Counts()
	logger.Printf("Cleaned snapshot archived: %d games, %d relationships, %d groups, %d members",
		counts["games"], counts["game_relationships"], counts["game_groups"], counts["game_group_members"])
}

// openBucket opens the configured bucket backend.
func openBucket(cfg *config.Config) (bucket.Store, error) {
	if cfg.Bucket.Provider == "gcs" {
		return bucket.NewGCSStore(context.Background(), cfg.Bucket.GCSBucket)
	}
	return bucket.NewLocalStore(cfg.Bucket.LocalPath)
}
