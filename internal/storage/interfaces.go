// Package storage provides composable storage interfaces for the cleaned
// game catalog.
//
// The write path and the read path are split: the pipeline loads complete
// snapshots through Warehouse, while the web API reads through Catalog.
// Backends implement both over the same four tables.
package storage

import (
	"context"

	"github.com/ekstrand/ludex/pkg/types"
)

// Warehouse is the pipeline's load target. A snapshot replaces all existing
// rows: the warehouse always reflects exactly one pipeline run.
type Warehouse interface {
	// LoadSnapshot atomically replaces the warehouse contents with the
	// given snapshot. Either every table is replaced or none is.
	LoadSnapshot(ctx context.Context, snapshot *types.Snapshot) error

	// Close releases any resources held by the warehouse.
	Close() error
}

// Catalog provides read access to the cleaned catalog for serving.
type Catalog interface {
	// GetGame retrieves a game by ID.
	// Returns ErrNotFound if the game doesn't exist.
	GetGame(ctx context.Context, gameID string) (*types.Game, error)

	// SearchGames finds games whose display or canonical name contains the
	// query, ranked by quality score descending.
	SearchGames(ctx context.Context, opts SearchOptions) (*PaginatedResult[types.Game], error)

	// ListGames retrieves games with pagination and sorting.
	ListGames(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Game], error)

	// ListGroups retrieves game groups with pagination, optionally filtered
	// by group type.
	ListGroups(ctx context.Context, opts ListOptions) (*PaginatedResult[types.GameGroup], error)

	// GetGroup retrieves a group by ID.
	// Returns ErrNotFound if the group doesn't exist.
	GetGroup(ctx context.Context, groupID string) (*types.GameGroup, error)

	// GetGroupMembers returns the games belonging to a group, primary
	// member first.
	GetGroupMembers(ctx context.Context, groupID string) ([]*types.Game, error)

	// GetRelationships returns the relationship edges where the given game
	// is the source or the target.
	GetRelationships(ctx context.Context, gameID string) ([]*types.GameRelationship, error)

	// TopRatedGames returns the highest-rated games that pass the
	// completeness gate.
	TopRatedGames(ctx context.Context, limit int) ([]*types.Game, error)

	// Stats returns catalog-wide row counts and quality aggregates.
	Stats(ctx context.Context) (*CatalogStats, error)

	// Close releases any resources held by the catalog.
	Close() error
}
