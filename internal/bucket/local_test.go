package bucket

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalStore_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw_data/test.json", strings.NewReader(`{"ok": true}`)))

	reader, err := store.Get(ctx, "raw_data/test.json")
	require.NoError(t, err)
	defer reader.Close()

	buf := make([]byte, 64)
	n, _ := reader.Read(buf)
	assert.Equal(t, `{"ok": true}`, string(buf[:n]))
}

func TestLocalStore_GetMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "raw_data/missing.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStore_ListFiltersByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw_data/a.json", strings.NewReader("{}")))
	require.NoError(t, store.Put(ctx, "raw_data/b.json", strings.NewReader("{}")))
	require.NoError(t, store.Put(ctx, "cleaned_data/run/games.json", strings.NewReader("{}")))

	keys, err := store.List(ctx, "raw_data/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"raw_data/a.json", "raw_data/b.json"}, keys)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLocalStore_DeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "raw_data/a.json", strings.NewReader("{}")))
	require.NoError(t, store.Delete(ctx, "raw_data/a.json"))
	require.NoError(t, store.Delete(ctx, "raw_data/a.json"))

	_, err := store.Get(ctx, "raw_data/a.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestRawObjectKey_SortsChronologically(t *testing.T) {
	earlier := RawObjectKey("raw_data", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	later := RawObjectKey("raw_data", time.Date(2025, 10, 2, 3, 4, 5, 0, time.UTC))

	assert.Equal(t, "raw_data/igdb_games_20250102_030405.json", earlier)
	assert.Less(t, earlier, later)
}

func TestLatestKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := LatestKey(ctx, store, "raw_data/")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	older := RawObjectKey("raw_data", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := RawObjectKey("raw_data", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Put(ctx, older, strings.NewReader("[]")))
	require.NoError(t, store.Put(ctx, newer, strings.NewReader("[]")))

	latest, err := LatestKey(ctx, store, "raw_data/")
	require.NoError(t, err)
	assert.Equal(t, newer, latest)
}
