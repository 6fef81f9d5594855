// Package types defines the core data structures for the Ludex catalog
// cleaning system. These types represent raw upstream game records, the
// canonical entities produced by the cleaning pipeline, and the relationship
// graph and groupings that link them.
package types

// Relationship type constants.
const (
	// RelationDuplicateOf links a record to the first-seen record with the
	// exact same (case-insensitive) name.
	RelationDuplicateOf = "duplicate_of"

	// RelationVersionOf links an edition/re-release to the earliest-released
	// record sharing its canonical name.
	RelationVersionOf = "version_of"

	// RelationSequelTo links a series entry to its chronological predecessor.
	RelationSequelTo = "sequel_to"
)

// Group type constants.
const (
	// GroupTypeVersion groups editions and re-releases of one game.
	GroupTypeVersion = "version_group"

	// GroupTypeSeries groups sequential entries of one franchise.
	GroupTypeSeries = "series"
)

// ConfidenceForType returns the fixed confidence score for a relationship
// type. Confidences are constants of the type, never computed from data.
// Unknown types return 0.
func ConfidenceForType(relationshipType string) float64 {
	switch relationshipType {
	case RelationDuplicateOf:
		return 1.0
	case RelationVersionOf:
		return 0.9
	case RelationSequelTo:
		return 0.8
	default:
		return 0
	}
}
