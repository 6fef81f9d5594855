package engine

import (
	"strconv"
	"time"

	"github.com/ekstrand/ludex/pkg/types"
)

// AssembleGame converts a raw record plus its precomputed canonical name
// and quality score into a canonical game record. The release date is
// derived from the upstream epoch timestamp and the cover URL from the
// nested cover object; both stay unset when absent.
//
// HasCompleteData uses the scorer's completeness gate (HasCompleteData),
// the single canonical rule for the whole system.
func AssembleGame(raw *types.RawGame, canonicalName string, qualityScore float64, now time.Time) *types.Game {
	var releaseDate *time.Time
	if raw.FirstReleaseDate != 0 {
		t := time.Unix(raw.FirstReleaseDate, 0).UTC()
		releaseDate = &t
	}

	return &types.Game{
		GameID:          strconv.FormatInt(raw.ID, 10),
		CanonicalName:   canonicalName,
		DisplayName:     raw.Name,
		ReleaseDate:     releaseDate,
		Summary:         raw.Summary,
		Rating:          raw.Rating,
		CoverURL:        raw.CoverURL(),
		HasCompleteData: HasCompleteData(raw),
		QualityScore:    qualityScore,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
