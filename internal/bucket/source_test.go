package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstrand/ludex/pkg/types"
)

func TestRawSource_ReadsLatestObject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := []*types.RawGame{{ID: 1, Name: "Doom"}}
	newer := []*types.RawGame{{ID: 2, Name: "Quake"}, {ID: 3, Name: "Hexen"}}

	_, err := WriteRaw(ctx, store, "raw_data", older, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = WriteRaw(ctx, store, "raw_data", newer, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	source := &RawSource{Store: store, Prefix: "raw_data"}
	games, err := source.Extract(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Quake", games[0].Name)
}

func TestRawSource_ExplicitKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := WriteRaw(ctx, store, "raw_data", []*types.RawGame{{ID: 1, Name: "Doom"}}, time.Now())
	require.NoError(t, err)

	source := &RawSource{Store: store, Key: key}
	games, err := source.Extract(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, int64(1), games[0].ID)
}

func TestRawSource_EmptyBucket(t *testing.T) {
	source := &RawSource{Store: newTestStore(t), Prefix: "raw_data"}

	_, err := source.Extract(context.Background())
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestSnapshotSink_WritesTablesAndMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	snapshot := &types.Snapshot{
		Games: []*types.Game{{GameID: "1", CanonicalName: "doom", DisplayName: "Doom"}},
		Relationships: []*types.GameRelationship{
			{SourceGameID: "2", TargetGameID: "1", RelationshipType: types.RelationDuplicateOf, ConfidenceScore: 1.0},
		},
		Groups:  []*types.GameGroup{{GroupID: "g1", GroupType: types.GroupTypeVersion, CanonicalName: "doom"}},
		Members: []*types.GameGroupMember{{GroupID: "g1", GameID: "1", IsPrimary: true}},
	}

	sink := &SnapshotSink{Store: store, Prefix: "cleaned_data", Now: func() time.Time { return at }}
	require.NoError(t, sink.Load(ctx, snapshot))

	keys, err := store.List(ctx, "cleaned_data/20250301_120000/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"cleaned_data/20250301_120000/games.json",
		"cleaned_data/20250301_120000/game_relationships.json",
		"cleaned_data/20250301_120000/game_groups.json",
		"cleaned_data/20250301_120000/game_group_members.json",
		"cleaned_data/20250301_120000/metadata.json",
	}, keys)

	var games []*types.Game
	require.NoError(t, ReadJSON(ctx, store, "cleaned_data/20250301_120000/games.json", &games))
	require.Len(t, games, 1)
	assert.Equal(t, "doom", games[0].CanonicalName)

	var meta runMetadata
	require.NoError(t, ReadJSON(ctx, store, "cleaned_data/20250301_120000/metadata.json", &meta))
	assert.Equal(t, 1, meta.Games)
	assert.Equal(t, "success", meta.Status)
}

func TestReadSnapshot_RoundTripsLatestRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := &types.Snapshot{
		Games: []*types.Game{{GameID: "1", CanonicalName: "doom", DisplayName: "Doom"}},
	}
	newer := &types.Snapshot{
		Games: []*types.Game{
			{GameID: "1", CanonicalName: "doom", DisplayName: "Doom"},
			{GameID: "2", CanonicalName: "quake", DisplayName: "Quake"},
		},
		Members: []*types.GameGroupMember{{GroupID: "g1", GameID: "1", IsPrimary: true}},
	}

	sink := &SnapshotSink{Store: store, Prefix: "cleaned_data",
		Now: func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }}
	require.NoError(t, sink.Load(ctx, older))

	sink.Now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, sink.Load(ctx, newer))

	run, err := LatestRun(ctx, store, "cleaned_data")
	require.NoError(t, err)
	assert.Equal(t, "20250601_000000", run)

	snapshot, err := ReadSnapshot(ctx, store, "cleaned_data", "")
	require.NoError(t, err)
	require.Len(t, snapshot.Games, 2)
	assert.Len(t, snapshot.Members, 1)
	assert.Empty(t, snapshot.Relationships)
}

func TestReadSnapshot_EmptyPrefix(t *testing.T) {
	_, err := ReadSnapshot(context.Background(), newTestStore(t), "cleaned_data", "")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
