package engine

import (
	"errors"

	"github.com/ekstrand/ludex/pkg/types"
)

// ErrNoGames is returned when a representative is requested from an empty
// group.
var ErrNoGames = errors.New("engine: cannot select a representative game from an empty group")

// Field weights for the completeness score. The weights sum to 4.5; scores
// are normalized to a 0-100 scale.
const (
	weightName        = 1.0
	weightSummary     = 0.8
	weightCover       = 0.7
	weightReleaseDate = 0.6
	weightRating      = 0.5
	weightGenres      = 0.4
	weightPlatforms   = 0.3
	weightThemes      = 0.2

	maxWeight = weightName + weightSummary + weightCover + weightReleaseDate +
		weightRating + weightGenres + weightPlatforms + weightThemes
)

// CalculateQualityScore computes a 0-100 completeness score for a raw
// record. Each of the eight signal fields contributes a fixed weight when
// present; a record with every field populated scores exactly 100.
func CalculateQualityScore(game *types.RawGame) float64 {
	score := 0.0

	if game.Name != "" {
		score += weightName
	}
	if game.Summary != "" {
		score += weightSummary
	}
	if game.Cover != nil {
		score += weightCover
	}
	if game.FirstReleaseDate != 0 {
		score += weightReleaseDate
	}
	if game.Rating != 0 {
		score += weightRating
	}
	if len(game.Genres) > 0 {
		score += weightGenres
	}
	if len(game.Platforms) > 0 {
		score += weightPlatforms
	}
	if len(game.Themes) > 0 {
		score += weightThemes
	}

	return score / maxWeight * 100
}

// HasCompleteData reports whether a record clears the completeness gate:
// name, summary, and cover must all be present, plus at least two of
// release date, rating, genres, and platforms. This hard gate is
// independent of the continuous quality score.
func HasCompleteData(game *types.RawGame) bool {
	if game.Name == "" || game.Summary == "" || game.Cover == nil {
		return false
	}

	optional := 0
	if game.FirstReleaseDate != 0 {
		optional++
	}
	if game.Rating != 0 {
		optional++
	}
	if len(game.Genres) > 0 {
		optional++
	}
	if len(game.Platforms) > 0 {
		optional++
	}

	return optional >= 2
}

// SelectRepresentativeGame returns the highest-quality record from a group
// of similar games. Ties resolve to the earliest record in input order.
// Returns ErrNoGames for an empty group.
func SelectRepresentativeGame(games []*types.RawGame) (*types.RawGame, error) {
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	if len(games) == 1 {
		return games[0], nil
	}

	best := games[0]
	bestScore := CalculateQualityScore(best)
	for _, game := range games[1:] {
		if score := CalculateQualityScore(game); score > bestScore {
			best = game
			bestScore = score
		}
	}

	return best, nil
}
