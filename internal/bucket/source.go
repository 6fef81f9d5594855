package bucket

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ekstrand/ludex/pkg/types"
)

// WriteRaw stores a batch of raw catalog records under a timestamped key and
// returns the key.
func WriteRaw(ctx context.Context, store Store, prefix string, games []*types.RawGame, at time.Time) (string, error) {
	key := RawObjectKey(prefix, at)
	if err := WriteJSON(ctx, store, key, games); err != nil {
		return "", err
	}
	return key, nil
}

// RawSource feeds the cleaning pipeline from stored raw data. With an empty
// Key it reads the most recent object under Prefix.
type RawSource struct {
	Store  Store
	Prefix string
	Key    string
}

func (s *RawSource) Extract(ctx context.Context) ([]*types.RawGame, error) {
	key := s.Key
	if key == "" {
		latest, err := LatestKey(ctx, s.Store, s.Prefix)
		if err != nil {
			return nil, err
		}
		key = latest
	}

	var games []*types.RawGame
	if err := ReadJSON(ctx, s.Store, key, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// runMetadata describes one cleaning run, stored alongside its output files.
type runMetadata struct {
	ProcessedAt   string `json:"processed_at"`
	Games         int    `json:"games"`
	Relationships int    `json:"relationships"`
	Groups        int    `json:"groups"`
	Members       int    `json:"members"`
	Status        string `json:"status"`
}

// SnapshotSink archives cleaned output as one JSON file per table under a
// timestamped run directory, plus a metadata file.
type SnapshotSink struct {
	Store  Store
	Prefix string

	// Now stamps the run directory; defaults to time.Now.
	Now func() time.Time
}

func (s *SnapshotSink) Load(ctx context.Context, snapshot *types.Snapshot) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	at := now().UTC()

	tables := map[string]interface{}{
		types.TableGames:         snapshot.Games,
		types.TableRelationships: snapshot.Relationships,
		types.TableGroups:        snapshot.Groups,
		types.TableMembers:       snapshot.Members,
	}
	for table, rows := range tables {
		key := CleanedObjectKey(s.Prefix, at, table+".json")
		if err := WriteJSON(ctx, s.Store, key, rows); err != nil {
			return fmt.Errorf("bucket: failed to archive %s: %w", table, err)
		}
	}

	counts := snapshot.Counts()
	meta := runMetadata{
		ProcessedAt:   at.Format(timestampLayout),
		Games:         counts[types.TableGames],
		Relationships: counts[types.TableRelationships],
		Groups:        counts[types.TableGroups],
		Members:       counts[types.TableMembers],
		Status:        "success",
	}
	return WriteJSON(ctx, s.Store, CleanedObjectKey(s.Prefix, at, "metadata.json"), meta)
}

// LatestRun returns the timestamp of the most recent cleaning run under
// prefix. Returns ErrObjectNotFound when no runs exist.
func LatestRun(ctx context.Context, store Store, prefix string) (string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return "", err
	}

	latest := ""
	for _, key := range keys {
		rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
		run, _, found := strings.Cut(rel, "/")
		if found && run > latest {
			latest = run
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w: no runs under %q", ErrObjectNotFound, prefix)
	}
	return latest, nil
}

// ReadSnapshot loads the cleaned output of one run back into memory. With an
// empty run it reads the most recent one.
func ReadSnapshot(ctx context.Context, store Store, prefix, run string) (*types.Snapshot, error) {
	if run == "" {
		latest, err := LatestRun(ctx, store, prefix)
		if err != nil {
			return nil, err
		}
		run = latest
	}

	snapshot := &types.Snapshot{}
	tables := map[string]interface{}{
		types.TableGames:         &snapshot.Games,
		types.TableRelationships: &snapshot.Relationships,
		types.TableGroups:        &snapshot.Groups,
		types.TableMembers:       &snapshot.Members,
	}
	for table, into := range tables {
		key := path.Join(prefix, run, table+".json")
		if err := ReadJSON(ctx, store, key, into); err != nil {
			return nil, fmt.Errorf("bucket: failed to read %s of run %s: %w", table, run, err)
		}
	}
	return snapshot, nil
}
