package types

import "time"

// GameGroup is a cluster of related games: either the editions of one game
// (version_group) or the entries of one franchise (series).
//
// RepresentativeGameID is the display-chosen member: the first record of the
// bucket in its original iteration order. This is a distinct concept from
// the relationship graph's reference game, which is date-sorted earliest;
// the two can disagree on the same bucket.
type GameGroup struct {
	GroupID              string    `json:"group_id"`
	GroupType            string    `json:"group_type"` // version_group or series
	CanonicalName        string    `json:"canonical_name"`
	RepresentativeGameID string    `json:"representative_game_id"`
	GameCount            int       `json:"game_count"` // always equals the number of members
	CreatedAt            time.Time `json:"created_at"`
}

// GameGroupMember records one game's membership in a group. Exactly one
// member per group is primary: the first element in bucket iteration order.
type GameGroupMember struct {
	GroupID   string    `json:"group_id"`
	GameID    string    `json:"game_id"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}
