package storage

import "errors"

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// PaginatedResult represents a paginated result set with type safety using generics.
type PaginatedResult[T any] struct {
	// Items is the slice of results for the current page.
	Items []*T

	// Total is the total number of items across all pages.
	Total int

	// Page is the current page number (1-indexed).
	Page int

	// PageSize is the number of items per page.
	PageSize int

	// HasMore indicates whether there are more pages available.
	HasMore bool
}

// ListOptions provides pagination and filtering options for list operations.
type ListOptions struct {
	// Page is the page number to retrieve (1-indexed, default: 1).
	Page int

	// Limit is the number of items per page (default: 20, max: 100).
	Limit int

	// SortBy specifies the field to sort by (e.g., "quality_score", "rating").
	SortBy string

	// SortOrder specifies the sort direction ("asc" or "desc", default: "desc").
	SortOrder string

	// GroupType filters groups by kind ("version_group" or "series").
	// Empty string means no filter. Ignored by game listings.
	GroupType string

	// CompleteOnly restricts game listings to records that pass the
	// completeness gate.
	CompleteOnly bool
}

// Normalize applies defaults and validates the ListOptions.
func (o *ListOptions) Normalize() {
	// Whitelist validation for SortBy to prevent SQL injection
	allowedSortFields := map[string]bool{
		"canonical_name": true,
		"display_name":   true,
		"release_date":   true,
		"rating":         true,
		"quality_score":  true,
		"game_count":     true,
		"created_at":     true,
	}

	if !allowedSortFields[o.SortBy] {
		o.SortBy = "quality_score"
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "desc"
	}

	if o.Page < 1 {
		o.Page = 1
	}

	if o.Limit < 1 {
		o.Limit = 20
	}

	if o.Limit > 100 {
		o.Limit = 100
	}
}

// Offset calculates the offset for SQL queries based on page and limit.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// SearchOptions provides options for name search operations.
type SearchOptions struct {
	// Query is the search query string. Matching is case-insensitive
	// against both display and canonical names.
	Query string

	// Limit is the maximum number of results to return (default: 20, max: 100).
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// CompleteOnly restricts results to records that pass the
	// completeness gate.
	CompleteOnly bool

	// MinQualityScore filters out records below this quality score (0-100).
	MinQualityScore float64
}

// Normalize applies defaults and validates the SearchOptions.
func (o *SearchOptions) Normalize() {
	if o.Limit < 1 {
		o.Limit = 20
	}

	if o.Limit > 100 {
		o.Limit = 100
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.MinQualityScore < 0 {
		o.MinQualityScore = 0
	}

	if o.MinQualityScore > 100 {
		o.MinQualityScore = 100
	}
}

// CatalogStats summarizes the warehouse contents.
type CatalogStats struct {
	// TotalGames is the number of canonical game records.
	TotalGames int `json:"total_games"`

	// CompleteGames is the number of records passing the completeness gate.
	CompleteGames int `json:"complete_games"`

	// TotalRelationships is the number of relationship edges.
	TotalRelationships int `json:"total_relationships"`

	// TotalGroups is the number of game groups.
	TotalGroups int `json:"total_groups"`

	// VersionGroups is the number of version groups.
	VersionGroups int `json:"version_groups"`

	// SeriesGroups is the number of series groups.
	SeriesGroups int `json:"series_groups"`

	// AverageQualityScore is the mean quality score across all games,
	// zero when the warehouse is empty.
	AverageQualityScore float64 `json:"average_quality_score"`
}
