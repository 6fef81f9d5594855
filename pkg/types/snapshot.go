package types

// Snapshot holds the four relationally-linked output collections of one
// pipeline run. A snapshot is complete or absent: the pipeline never emits
// partial output.
type Snapshot struct {
	Games         []*Game             `json:"games"`
	Relationships []*GameRelationship `json:"game_relationships"`
	Groups        []*GameGroup        `json:"game_groups"`
	Members       []*GameGroupMember  `json:"game_group_members"`
}

// Counts returns the row count for each output table, keyed by table name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		TableGames:         len(s.Games),
		TableRelationships: len(s.Relationships),
		TableGroups:        len(s.Groups),
		TableMembers:       len(s.Members),
	}
}

// Warehouse table names. The bucket store uses the same names for the
// per-table JSON files, keeping file layout and schema aligned.
const (
	TableGames         = "games"
	TableRelationships = "game_relationships"
	TableGroups        = "game_groups"
	TableMembers       = "game_group_members"
)
