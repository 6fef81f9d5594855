package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekstrand/ludex/pkg/types"
)

// bucket is one cluster of raw records sharing a grouping key. Records keep
// their insertion order, which doubles as the bucket's iteration order.
type bucket struct {
	key   string
	games []*types.RawGame
}

// bucketIndex accumulates buckets while preserving first-seen key order, so
// grouping output is deterministic for a given input order.
type bucketIndex struct {
	order []*bucket
	byKey map[string]*bucket
}

func newBucketIndex() *bucketIndex {
	return &bucketIndex{byKey: make(map[string]*bucket)}
}

func (bi *bucketIndex) add(key string, game *types.RawGame) {
	b, ok := bi.byKey[key]
	if !ok {
		b = &bucket{key: key}
		bi.byKey[key] = b
		bi.order = append(bi.order, b)
	}
	b.games = append(b.games, game)
}

// retain returns the buckets holding more than one record, in first-seen
// key order.
func (bi *bucketIndex) retain() []*bucket {
	var kept []*bucket
	for _, b := range bi.order {
		if len(b.games) > 1 {
			kept = append(kept, b)
		}
	}
	return kept
}

// Grouping is the immutable result of bucketing one batch of raw records.
// It is produced once per pipeline run and discarded afterwards; the bucket
// state is batch-scoped and never reused across batches.
//
// The three bucket kinds are independent sets: a record can appear in an
// exact-duplicate bucket, a version bucket, and a series bucket at once.
type Grouping struct {
	exact    []*bucket
	versions []*bucket
	series   []*bucket
}

// GroupGames buckets a batch of raw records three ways: by exact
// (case-insensitive) name, by canonical base name, and by series. Records
// without a usable name are silently excluded. Only buckets with more than
// one record survive; version buckets additionally require the canonical
// name to differ from the record's own lowercased name and to be longer
// than three characters.
func GroupGames(c *Canonicalizer, games []*types.RawGame) *Grouping {
	exact := newBucketIndex()
	for _, game := range games {
		if !game.HasName() {
			continue
		}
		exact.add(lowerName(game), game)
	}

	// Version buckets hold every record keyed by canonical base name, but a
	// bucket only survives when at least one member carried version
	// decoration (its canonical name differs from its own lowercased name).
	// The undecorated base title stays in the bucket so a plain release
	// groups with its editions.
	versions := newBucketIndex()
	decorated := make(map[string]bool)
	for _, game := range games {
		if !game.HasName() {
			continue
		}
		baseName := c.ExtractCanonicalName(game.Name)
		if baseName == "" || len(baseName) <= 3 {
			continue
		}
		versions.add(baseName, game)
		if baseName != lowerName(game) {
			decorated[baseName] = true
		}
	}

	series := newBucketIndex()
	for _, game := range games {
		if !game.HasName() {
			continue
		}
		if seriesName, ok := c.ExtractSeriesName(game.Name); ok {
			series.add(seriesName, game)
		}
	}

	var versionBuckets []*bucket
	for _, b := range versions.retain() {
		if decorated[b.key] {
			versionBuckets = append(versionBuckets, b)
		}
	}

	return &Grouping{
		exact:    exact.retain(),
		versions: versionBuckets,
		series:   series.retain(),
	}
}

// BucketCounts returns the number of surviving exact-duplicate, version,
// and series buckets.
func (g *Grouping) BucketCounts() (exact, versions, series int) {
	return len(g.exact), len(g.versions), len(g.series)
}

// Relationships emits the directed relationship edges implied by the
// grouping, stamped with the given time:
//
//   - exact duplicates: every record after the first-seen one points at it
//     with duplicate_of;
//   - version groups: records point at the earliest-released record with
//     version_of (missing release dates sort earliest);
//   - series groups: consecutive date-sorted pairs form a sequel_to chain
//     with source = later entry, target = its predecessor. A chain, not a
//     star: n records yield n-1 edges.
func (g *Grouping) Relationships(now time.Time) []*types.GameRelationship {
	var relationships []*types.GameRelationship

	for _, b := range g.exact {
		reference := b.games[0]
		for _, game := range b.games[1:] {
			relationships = append(relationships, newRelationship(game, reference, types.RelationDuplicateOf, now))
		}
	}

	for _, b := range g.versions {
		sorted := sortByReleaseDate(b.games)
		reference := sorted[0]
		for _, game := range sorted[1:] {
			relationships = append(relationships, newRelationship(game, reference, types.RelationVersionOf, now))
		}
	}

	for _, b := range g.series {
		sorted := sortByReleaseDate(b.games)
		for i := 0; i < len(sorted)-1; i++ {
			relationships = append(relationships, newRelationship(sorted[i+1], sorted[i], types.RelationSequelTo, now))
		}
	}

	return relationships
}

// Groups emits one group per surviving version/series bucket together with
// its memberships. Each group gets a freshly generated unique id shared by
// its members. The representative (and the primary member) is the bucket's
// first record in original iteration order, which can differ from the
// date-sorted reference used by Relationships.
func (g *Grouping) Groups(now time.Time) ([]*types.GameGroup, []*types.GameGroupMember) {
	var groups []*types.GameGroup
	var members []*types.GameGroupMember

	emit := func(b *bucket, groupType string) {
		groupID := uuid.NewString()
		groups = append(groups, &types.GameGroup{
			GroupID:              groupID,
			GroupType:            groupType,
			CanonicalName:        b.key,
			RepresentativeGameID: gameID(b.games[0]),
			GameCount:            len(b.games),
			CreatedAt:            now,
		})
		for i, game := range b.games {
			members = append(members, &types.GameGroupMember{
				GroupID:   groupID,
				GameID:    gameID(game),
				IsPrimary: i == 0,
				CreatedAt: now,
			})
		}
	}

	for _, b := range g.versions {
		emit(b, types.GroupTypeVersion)
	}
	for _, b := range g.series {
		emit(b, types.GroupTypeSeries)
	}

	return groups, members
}

func newRelationship(source, target *types.RawGame, relType string, now time.Time) *types.GameRelationship {
	return &types.GameRelationship{
		SourceGameID:     gameID(source),
		TargetGameID:     gameID(target),
		RelationshipType: relType,
		ConfidenceScore:  types.ConfidenceForType(relType),
		CreatedAt:        now,
	}
}

// sortByReleaseDate returns a copy of games in ascending release order.
// Records without a release date sort earliest. The sort is stable so equal
// timestamps keep their input order.
func sortByReleaseDate(games []*types.RawGame) []*types.RawGame {
	sorted := make([]*types.RawGame, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FirstReleaseDate < sorted[j].FirstReleaseDate
	})
	return sorted
}

func gameID(game *types.RawGame) string {
	return strconv.FormatInt(game.ID, 10)
}

func lowerName(game *types.RawGame) string {
	return strings.ToLower(game.Name)
}
