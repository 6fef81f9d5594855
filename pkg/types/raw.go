package types

// NamedRef is a reference to an upstream lookup entity (genre, platform,
// theme) carrying its id and display name.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Cover is the nested cover image object on a raw record.
type Cover struct {
	URL string `json:"url"`
}

// RawGame is a game record as delivered by the upstream catalog API.
// All fields except ID and Name are optional; absent fields decode to their
// zero values. The cleaning engine treats raw records as read-only input.
type RawGame struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Summary          string     `json:"summary,omitempty"`
	Storyline        string     `json:"storyline,omitempty"`
	FirstReleaseDate int64      `json:"first_release_date,omitempty"` // epoch seconds, 0 = unknown
	Rating           float64    `json:"rating,omitempty"`
	RatingCount      int64      `json:"rating_count,omitempty"`
	Cover            *Cover     `json:"cover,omitempty"`
	Genres           []NamedRef `json:"genres,omitempty"`
	Platforms        []NamedRef `json:"platforms,omitempty"`
	Themes           []NamedRef `json:"themes,omitempty"`
}

// HasName reports whether the record carries a usable name. Records without
// one are excluded from every bucket and from canonical-record assembly.
func (g *RawGame) HasName() bool {
	return g != nil && g.Name != ""
}

// CoverURL returns the nested cover URL, or "" when no cover is present.
func (g *RawGame) CoverURL() string {
	if g.Cover == nil {
		return ""
	}
	return g.Cover.URL
}
