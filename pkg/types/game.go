package types

import "time"

// Game is a canonical game record produced by the cleaning pipeline.
// One Game is assembled per raw record with a usable name. Games are
// immutable once emitted; re-running the pipeline produces a full new
// snapshot rather than updating prior output.
type Game struct {
	GameID          string     `json:"game_id"`
	CanonicalName   string     `json:"canonical_name"` // base title used as grouping key
	DisplayName     string     `json:"display_name"`   // original upstream name
	ReleaseDate     *time.Time `json:"release_date,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	CoverURL        string     `json:"cover_url,omitempty"`
	HasCompleteData bool       `json:"has_complete_data"`
	QualityScore    float64    `json:"quality_score"` // 0-100 completeness metric
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
