package engine

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/ekstrand/ludex/pkg/types"
)

// sliceSource delivers a fixed batch of raw records.
type sliceSource struct {
	games []*types.RawGame
	err   error
}

func (s *sliceSource) Extract(ctx context.Context) ([]*types.RawGame, error) {
	return s.games, s.err
}

// captureSink records the snapshot it receives.
type captureSink struct {
	snapshot *types.Snapshot
	err      error
}

func (s *captureSink) Load(ctx context.Context, snapshot *types.Snapshot) error {
	s.snapshot = snapshot
	return s.err
}

// eventRecorder collects progress events.
type eventRecorder struct {
	events []ProgressEvent
}

func (r *eventRecorder) Notify(event ProgressEvent) {
	r.events = append(r.events, event)
}

func newTestPipeline(source Source, sink Sink, notifier Notifier) *Pipeline {
	logger := log.New(io.Discard, "", 0)
	return NewPipeline(source, sink, NewCanonicalizer(nil), logger, notifier)
}

func TestPipeline_EmptyBatchAborts(t *testing.T) {
	sink := &captureSink{}
	pipeline := newTestPipeline(&sliceSource{}, sink, nil)

	_, err := pipeline.Run(context.Background())
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if sink.snapshot != nil {
		t.Error("no output may be emitted for an aborted run")
	}
}

func TestPipeline_SourceErrorAborts(t *testing.T) {
	sink := &captureSink{}
	sourceErr := errors.New("bucket unreadable")
	pipeline := newTestPipeline(&sliceSource{err: sourceErr}, sink, nil)

	_, err := pipeline.Run(context.Background())
	if !errors.Is(err, sourceErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if sink.snapshot != nil {
		t.Error("no output may be emitted for an aborted run")
	}
}

func TestPipeline_SinkErrorSurfaces(t *testing.T) {
	sinkErr := errors.New("warehouse down")
	sink := &captureSink{err: sinkErr}
	pipeline := newTestPipeline(&sliceSource{games: []*types.RawGame{rawGame(1, "Doom", 0)}}, sink, nil)

	_, err := pipeline.Run(context.Background())
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
}

func TestPipeline_FullRun(t *testing.T) {
	games := []*types.RawGame{
		rawGame(10, "The Witcher 3: Wild Hunt", 1431993600),
		rawGame(11, "The Witcher 3: Wild Hunt - Complete Edition", 1472601600),
		rawGame(1, "Mass Effect", 1195516800),
		rawGame(2, "Mass Effect 2", 1264636800),
		{ID: 99}, // unnamed, silently skipped
	}
	sink := &captureSink{}
	recorder := &eventRecorder{}
	pipeline := newTestPipeline(&sliceSource{games: games}, sink, recorder)

	snapshot, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sink.snapshot != snapshot {
		t.Fatal("sink should receive the run's snapshot")
	}

	// One canonical record per named input; the unnamed record is excluded.
	if len(snapshot.Games) != 4 {
		t.Errorf("games = %d, want 4", len(snapshot.Games))
	}

	if len(relationshipsOfType(snapshot.Relationships, types.RelationVersionOf)) != 1 {
		t.Errorf("expected one version_of edge")
	}
	if len(relationshipsOfType(snapshot.Relationships, types.RelationSequelTo)) == 0 {
		t.Errorf("expected sequel_to edges")
	}

	// Groups and members stay consistent.
	counts := make(map[string]int)
	for _, member := range snapshot.Members {
		counts[member.GroupID]++
	}
	for _, group := range snapshot.Groups {
		if counts[group.GroupID] != group.GameCount {
			t.Errorf("group %s: member count %d != game count %d", group.GroupID, counts[group.GroupID], group.GameCount)
		}
	}

	// Progress events bracket the run.
	if len(recorder.events) == 0 {
		t.Fatal("expected progress events")
	}
	if recorder.events[0].Stage != "extract" {
		t.Errorf("first event stage = %s, want extract", recorder.events[0].Stage)
	}
	if last := recorder.events[len(recorder.events)-1]; last.Stage != "done" {
		t.Errorf("last event stage = %s, want done", last.Stage)
	}
}

func TestPipeline_AllUnnamedRecordsAbort(t *testing.T) {
	games := []*types.RawGame{{ID: 1}, {ID: 2}}
	pipeline := newTestPipeline(&sliceSource{games: games}, &captureSink{}, nil)

	_, err := pipeline.Run(context.Background())
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}
