package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ekstrand/ludex/pkg/types"
)

// ErrEmptyBatch is returned when the source yields no records. An empty
// batch aborts the run before any transformation happens.
var ErrEmptyBatch = errors.New("engine: no games to process")

// Source delivers one full batch of raw records into memory.
type Source interface {
	Extract(ctx context.Context) ([]*types.RawGame, error)
}

// Sink receives the completed snapshot of one pipeline run for loading.
type Sink interface {
	Load(ctx context.Context, snapshot *types.Snapshot) error
}

// Notifier receives progress events during a pipeline run. Implementations
// must not block; the pipeline calls them inline.
type Notifier interface {
	Notify(event ProgressEvent)
}

// ProgressEvent describes one observable step of a pipeline run.
type ProgressEvent struct {
	Stage   string         `json:"stage"` // extract, transform, load, done
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// Pipeline sequences Extract -> Transform -> Load over one batch. Any error
// during Extract or Transform aborts the entire run; there is no partial
// output. A Pipeline is safe to reuse across runs: all batch state lives in
// the run itself.
type Pipeline struct {
	source   Source
	sink     Sink
	canon    *Canonicalizer
	logger   *log.Logger
	notifier Notifier
}

// NewPipeline creates a cleaning pipeline. The notifier may be nil.
func NewPipeline(source Source, sink Sink, canon *Canonicalizer, logger *log.Logger, notifier Notifier) *Pipeline {
	if canon == nil {
		canon = NewCanonicalizer(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		source:   source,
		sink:     sink,
		canon:    canon,
		logger:   logger,
		notifier: notifier,
	}
}

// Run executes the full pipeline over one batch and returns the loaded
// snapshot.
func (p *Pipeline) Run(ctx context.Context) (*types.Snapshot, error) {
	start := time.Now()
	p.logger.Printf("starting cleaning pipeline")

	raw, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := p.transform(raw)
	if err != nil {
		return nil, err
	}

	if err := p.load(ctx, snapshot); err != nil {
		return nil, err
	}

	p.logger.Printf("cleaning pipeline completed in %.1fs", time.Since(start).Seconds())
	p.notify(ProgressEvent{Stage: "done", Message: "pipeline completed", Counts: snapshot.Counts()})

	return snapshot, nil
}

func (p *Pipeline) extract(ctx context.Context) ([]*types.RawGame, error) {
	p.notify(ProgressEvent{Stage: "extract", Message: "loading raw records"})

	raw, err := p.source.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyBatch
	}

	p.logger.Printf("extracted %d raw records", len(raw))
	return raw, nil
}

func (p *Pipeline) transform(raw []*types.RawGame) (*types.Snapshot, error) {
	p.notify(ProgressEvent{Stage: "transform", Message: "canonicalizing and grouping"})
	now := time.Now().UTC()

	// Records without a usable name are excluded from every downstream
	// collection; this is a skip condition, not an error.
	type scored struct {
		game          *types.RawGame
		canonicalName string
		qualityScore  float64
	}
	var named []scored
	for _, game := range raw {
		if !game.HasName() {
			continue
		}
		named = append(named, scored{
			game:          game,
			canonicalName: p.canon.ExtractCanonicalName(game.Name),
			qualityScore:  CalculateQualityScore(game),
		})
	}
	if len(named) == 0 {
		return nil, ErrEmptyBatch
	}

	games := make([]*types.RawGame, len(named))
	for i, item := range named {
		games[i] = item.game
	}
	grouping := GroupGames(p.canon, games)
	exact, versions, series := grouping.BucketCounts()
	p.logger.Printf("grouped records: %d exact-duplicate, %d version, %d series buckets", exact, versions, series)

	snapshot := &types.Snapshot{}
	for _, item := range named {
		snapshot.Games = append(snapshot.Games, AssembleGame(item.game, item.canonicalName, item.qualityScore, now))
	}
	snapshot.Relationships = grouping.Relationships(now)
	snapshot.Groups, snapshot.Members = grouping.Groups(now)

	p.logger.Printf("transform complete: %d games, %d relationships, %d groups, %d members",
		len(snapshot.Games), len(snapshot.Relationships), len(snapshot.Groups), len(snapshot.Members))

	return snapshot, nil
}

func (p *Pipeline) load(ctx context.Context, snapshot *types.Snapshot) error {
	p.notify(ProgressEvent{Stage: "load", Message: "loading snapshot", Counts: snapshot.Counts()})

	if err := p.sink.Load(ctx, snapshot); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

func (p *Pipeline) notify(event ProgressEvent) {
	if p.notifier != nil {
		p.notifier.Notify(event)
	}
}
