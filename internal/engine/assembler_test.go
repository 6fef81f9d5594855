package engine

import (
	"testing"
	"time"

	"github.com/ekstrand/ludex/pkg/types"
)

func TestAssembleGame_FullRecord(t *testing.T) {
	raw := fullRawGame(42)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	game := AssembleGame(raw, "test game", 100, now)

	if game.GameID != "42" {
		t.Errorf("game id = %s, want 42", game.GameID)
	}
	if game.CanonicalName != "test game" {
		t.Errorf("canonical name = %q", game.CanonicalName)
	}
	if game.DisplayName != raw.Name {
		t.Errorf("display name = %q, want %q", game.DisplayName, raw.Name)
	}
	if game.ReleaseDate == nil {
		t.Fatal("release date should be derived from the epoch timestamp")
	}
	if got := game.ReleaseDate.Unix(); got != raw.FirstReleaseDate {
		t.Errorf("release date = %d, want %d", got, raw.FirstReleaseDate)
	}
	if game.CoverURL != raw.Cover.URL {
		t.Errorf("cover url = %q, want %q", game.CoverURL, raw.Cover.URL)
	}
	if !game.HasCompleteData {
		t.Error("complete record should pass the completeness gate")
	}
	if game.QualityScore != 100 {
		t.Errorf("quality score = %f, want 100", game.QualityScore)
	}
	if !game.CreatedAt.Equal(now) || !game.UpdatedAt.Equal(now) {
		t.Error("timestamps should be stamped at assembly time")
	}
}

func TestAssembleGame_SparseRecord(t *testing.T) {
	raw := &types.RawGame{ID: 7, Name: "Sparse"}
	now := time.Now().UTC()

	game := AssembleGame(raw, "sparse", CalculateQualityScore(raw), now)

	if game.ReleaseDate != nil {
		t.Error("release date should be nil when the epoch timestamp is absent")
	}
	if game.CoverURL != "" {
		t.Error("cover url should be empty when no cover is present")
	}
	if game.HasCompleteData {
		t.Error("sparse record should not pass the completeness gate")
	}
}
