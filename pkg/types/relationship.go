package types

import "time"

// GameRelationship is a directed edge between two canonical games.
// A record may carry multiple edges: it can be a duplicate of one record and
// simultaneously part of a series chain.
//
// Edge direction follows the cleaning engine's conventions: duplicate_of and
// version_of edges point from the later/lesser record at the reference
// record; sequel_to edges point from each series entry at its predecessor.
type GameRelationship struct {
	SourceGameID     string    `json:"source_game_id"`
	TargetGameID     string    `json:"target_game_id"`
	RelationshipType string    `json:"relationship_type"` // duplicate_of, version_of, sequel_to
	ConfidenceScore  float64   `json:"confidence_score"`  // fixed per type: 1.0 / 0.9 / 0.8
	CreatedAt        time.Time `json:"created_at"`
}
