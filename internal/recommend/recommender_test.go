package recommend

import (
	"errors"
	"math"
	"testing"

	"github.com/ekstrand/ludex/pkg/types"
)

func refs(names ...string) []types.NamedRef {
	out := make([]types.NamedRef, len(names))
	for i, name := range names {
		out[i] = types.NamedRef{ID: int64(i + 1), Name: name}
	}
	return out
}

func testCorpus() []*types.RawGame {
	return []*types.RawGame{
		{
			ID:      1,
			Name:    "Doom",
			Summary: "A space marine fights demons on mars with shotguns and chainsaws.",
			Genres:  refs("Shooter"), Platforms: refs("PC"), Themes: refs("Action", "Horror"),
		},
		{
			ID:      2,
			Name:    "Quake",
			Summary: "A marine fights monsters with shotguns in dark gothic corridors.",
			Genres:  refs("Shooter"), Platforms: refs("PC"), Themes: refs("Action", "Horror"),
		},
		{
			ID:      3,
			Name:    "Stardew Valley",
			Summary: "Inherit a farm, grow crops, raise animals, and befriend the townsfolk.",
			Genres:  refs("Simulator"), Platforms: refs("PC"), Themes: refs("Sandbox"),
		},
		{
			ID:   4,
			Name: "No Summary Game",
		},
	}
}

func newTestRecommender(t *testing.T) *Recommender {
	t.Helper()
	r, err := NewRecommender(testCorpus(), Options{})
	if err != nil {
		t.Fatalf("NewRecommender failed: %v", err)
	}
	return r
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("The marine fights Demons!")
	want := []string{"marine", "fights", "demons", "marine fights", "fights demons"}

	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestNewRecommender_SkipsGamesWithoutSummary(t *testing.T) {
	r := newTestRecommender(t)

	if r.Size() != 3 {
		t.Errorf("indexed games = %d, want 3", r.Size())
	}
	if r.Has("4") {
		t.Error("game without summary should not be indexed")
	}
}

func TestNewRecommender_EmptyCorpus(t *testing.T) {
	_, err := NewRecommender([]*types.RawGame{{ID: 1, Name: "Bare"}}, Options{})
	if err == nil {
		t.Fatal("expected error for corpus without summaries")
	}
}

func TestSimilarGames_RanksByContent(t *testing.T) {
	r := newTestRecommender(t)

	matches, err := r.SimilarGames("1", 10)
	if err != nil {
		t.Fatalf("SimilarGames failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	// The other shooter outranks the farming sim.
	if matches[0].GameID != "2" {
		t.Errorf("best match = %s, want 2", matches[0].GameID)
	}
	if matches[0].Similarity <= matches[1].Similarity {
		t.Errorf("similar shooter (%f) should outrank farming sim (%f)",
			matches[0].Similarity, matches[1].Similarity)
	}
	for _, match := range matches {
		if match.GameID == "1" {
			t.Error("query game must be excluded from its own matches")
		}
		if match.Similarity < 0 || match.Similarity > 1.0001 {
			t.Errorf("similarity %f out of range", match.Similarity)
		}
	}
}

func TestSimilarGames_HonorsLimit(t *testing.T) {
	r := newTestRecommender(t)

	matches, err := r.SimilarGames("1", 1)
	if err != nil {
		t.Fatalf("SimilarGames failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("matches = %d, want 1", len(matches))
	}
}

func TestSimilarGames_UnknownGame(t *testing.T) {
	r := newTestRecommender(t)

	_, err := r.SimilarGames("999", 5)
	if !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}

	_, err = r.SimilarGames("4", 5)
	if !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("summary-less game should be unknown, got %v", err)
	}
}

func TestVector_UnitLength(t *testing.T) {
	r := newTestRecommender(t)

	vec, err := r.Vector("1")
	if err != nil {
		t.Fatalf("Vector failed: %v", err)
	}
	if len(vec) != r.Dimension() {
		t.Fatalf("vector length = %d, want dimension %d", len(vec), r.Dimension())
	}

	var sum float64
	for _, w := range vec {
		sum += float64(w) * float64(w)
	}
	if math.Abs(math.Sqrt(sum)-1) > 0.001 {
		t.Errorf("vector norm = %f, want 1", math.Sqrt(sum))
	}
}

func TestMinDocFreqPrunesRareTerms(t *testing.T) {
	strict, err := NewRecommender(testCorpus(), Options{MinDocFreq: 2})
	if err != nil {
		t.Fatalf("NewRecommender failed: %v", err)
	}
	loose := newTestRecommender(t)

	if strict.Dimension() >= loose.Dimension() {
		t.Errorf("min_df=2 dimension (%d) should be smaller than min_df=1 (%d)",
			strict.Dimension(), loose.Dimension())
	}
}
