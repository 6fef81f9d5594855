// Package postgres implements the warehouse and catalog interfaces on
// PostgreSQL, with optional pgvector support for recommendation embeddings.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/pkg/types"
)

// Store implements storage.Warehouse and storage.Catalog using PostgreSQL.
type Store struct {
	db                *sql.DB
	pgvectorAvailable bool
}

// NewStore opens a PostgreSQL connection and creates the schema. The
// pgvector extension is enabled when available; without it the embeddings
// table carries no vector column and similarity queries are unavailable.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	store := &Store{db: db}
	if _, err := db.Exec(SchemaPgvector); err != nil {
		log.Printf("postgres: pgvector unavailable, similarity queries disabled: %v", err)
	} else {
		store.pgvectorAvailable = true
	}

	return store, nil
}

// PgvectorAvailable reports whether vector similarity queries can be served.
func (s *Store) PgvectorAvailable() bool {
	return s.pgvectorAvailable
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadSnapshot atomically replaces the warehouse contents with the snapshot.
func (s *Store) LoadSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	if snapshot == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		TRUNCATE TABLE game_group_members, game_groups, game_relationships, games
	`); err != nil {
		return fmt.Errorf("failed to clear warehouse: %w", err)
	}

	if err := insertGames(ctx, tx, snapshot.Games); err != nil {
		return err
	}
	if err := insertRelationships(ctx, tx, snapshot.Relationships); err != nil {
		return err
	}
	if err := insertGroups(ctx, tx, snapshot.Groups); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, snapshot.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func insertGames(ctx context.Context, tx *sql.Tx, games []*types.Game) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (
			game_id, canonical_name, display_name, release_date, summary,
			rating, cover_url, has_complete_data, quality_score,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare game insert: %w", err)
	}
	defer stmt.Close()

	for _, game := range games {
		var releaseDate interface{}
		if game.ReleaseDate != nil {
			releaseDate = *game.ReleaseDate
		}
		if _, err := stmt.ExecContext(ctx,
			game.GameID, game.CanonicalName, game.DisplayName, releaseDate,
			game.Summary, game.Rating, game.CoverURL, game.HasCompleteData,
			game.QualityScore, game.CreatedAt, game.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert game %s: %w", game.GameID, err)
		}
	}
	return nil
}

func insertRelationships(ctx context.Context, tx *sql.Tx, rels []*types.GameRelationship) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_relationships (
			source_game_id, target_game_id, relationship_type,
			confidence_score, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare relationship insert: %w", err)
	}
	defer stmt.Close()

	for _, rel := range rels {
		if _, err := stmt.ExecContext(ctx,
			rel.SourceGameID, rel.TargetGameID, rel.RelationshipType,
			rel.ConfidenceScore, rel.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert relationship %s -> %s: %w",
				rel.SourceGameID, rel.TargetGameID, err)
		}
	}
	return nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, groups []*types.GameGroup) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_groups (
			group_id, group_type, canonical_name,
			representative_game_id, game_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare group insert: %w", err)
	}
	defer stmt.Close()

	for _, group := range groups {
		if _, err := stmt.ExecContext(ctx,
			group.GroupID, group.GroupType, group.CanonicalName,
			group.RepresentativeGameID, group.GameCount, group.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert group %s: %w", group.GroupID, err)
		}
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, members []*types.GameGroupMember) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_group_members (group_id, game_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare member insert: %w", err)
	}
	defer stmt.Close()

	for _, member := range members {
		if _, err := stmt.ExecContext(ctx,
			member.GroupID, member.GameID, member.IsPrimary, member.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert member %s/%s: %w",
				member.GroupID, member.GameID, err)
		}
	}
	return nil
}

const gameColumns = `game_id, canonical_name, display_name, release_date, summary,
	rating, cover_url, has_complete_data, quality_score, created_at, updated_at`

func scanGame(row interface{ Scan(...interface{}) error }) (*types.Game, error) {
	var game types.Game
	var releaseDate sql.NullTime
	err := row.Scan(
		&game.GameID, &game.CanonicalName, &game.DisplayName, &releaseDate,
		&game.Summary, &game.Rating, &game.CoverURL, &game.HasCompleteData,
		&game.QualityScore, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if releaseDate.Valid {
		t := releaseDate.Time
		game.ReleaseDate = &t
	}
	return &game, nil
}

func collectGames(rows *sql.Rows) ([]*types.Game, error) {
	defer rows.Close()
	var games []*types.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// GetGame retrieves a game by ID.
func (s *Store) GetGame(ctx context.Context, gameID string) (*types.Game, error) {
	if gameID == "" {
		return nil, fmt.Errorf("%w: game ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+gameColumns+" FROM games WHERE game_id = $1", gameID)
	game, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return game, nil
}

// SearchGames finds games by name, ranked by quality score descending.
func (s *Store) SearchGames(ctx context.Context, opts storage.SearchOptions) (*storage.PaginatedResult[types.Game], error) {
	opts.Normalize()
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("%w: search query is required", storage.ErrInvalidInput)
	}

	where := "WHERE (display_name ILIKE $1 OR canonical_name ILIKE $1)"
	args := []interface{}{"%" + opts.Query + "%"}
	if opts.CompleteOnly {
		where += " AND has_complete_data"
	}
	if opts.MinQualityScore > 0 {
		args = append(args, opts.MinQualityScore)
		where += fmt.Sprintf(" AND quality_score >= $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM games %s ORDER BY quality_score DESC, display_name ASC LIMIT $%d OFFSET $%d",
		gameColumns, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}

	games, err := collectGames(rows)
	if err != nil {
		return nil, err
	}

	return &storage.PaginatedResult[types.Game]{
		Items:    games,
		Total:    total,
		Page:     opts.Offset/opts.Limit + 1,
		PageSize: opts.Limit,
		HasMore:  opts.Offset+len(games) < total,
	}, nil
}

// ListGames retrieves games with pagination and sorting.
func (s *Store) ListGames(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Game], error) {
	opts.Normalize()

	where := ""
	if opts.CompleteOnly {
		where = "WHERE has_complete_data"
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games "+where).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	// SortBy and SortOrder are whitelist-validated by Normalize.
	query := fmt.Sprintf(
		"SELECT %s FROM games %s ORDER BY %s %s LIMIT $1 OFFSET $2",
		gameColumns, where, opts.SortBy, strings.ToUpper(opts.SortOrder))
	rows, err := s.db.QueryContext(ctx, query, opts.Limit, opts.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games, err := collectGames(rows)
	if err != nil {
		return nil, err
	}

	return &storage.PaginatedResult[types.Game]{
		Items:    games,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(games) < total,
	}, nil
}

const groupColumns = `group_id, group_type, canonical_name, representative_game_id, game_count, created_at`

func scanGroup(row interface{ Scan(...interface{}) error }) (*types.GameGroup, error) {
	var group types.GameGroup
	err := row.Scan(
		&group.GroupID, &group.GroupType, &group.CanonicalName,
		&group.RepresentativeGameID, &group.GameCount, &group.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups retrieves game groups with pagination.
func (s *Store) ListGroups(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.GameGroup], error) {
	opts.Normalize()

	where := ""
	args := []interface{}{}
	if opts.GroupType != "" {
		where = "WHERE group_type = $1"
		args = append(args, opts.GroupType)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM game_groups "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}

	sortBy := opts.SortBy
	if sortBy != "game_count" && sortBy != "canonical_name" && sortBy != "created_at" {
		sortBy = "game_count"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM game_groups %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		groupColumns, where, sortBy, strings.ToUpper(opts.SortOrder),
		len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*types.GameGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &storage.PaginatedResult[types.GameGroup]{
		Items:    groups,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(groups) < total,
	}, nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*types.GameGroup, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM game_groups WHERE group_id = $1", groupID)
	group, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	return group, nil
}

// GetGroupMembers returns the games in a group, primary member first.
func (s *Store) GetGroupMembers(ctx context.Context, groupID string) ([]*types.Game, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group ID is required", storage.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		JOIN game_group_members ON game_group_members.game_id = games.game_id
		WHERE game_group_members.group_id = $1
		ORDER BY game_group_members.is_primary DESC, games.game_id ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of group %s: %w", groupID, err)
	}
	return collectGames(rows)
}

// GetRelationships returns edges touching the given game.
func (s *Store) GetRelationships(ctx context.Context, gameID string) ([]*types.GameRelationship, error) {
	if gameID == "" {
		return nil, fmt.Errorf("%w: game ID is required", storage.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_game_id, target_game_id, relationship_type, confidence_score, created_at
		FROM game_relationships
		WHERE source_game_id = $1 OR target_game_id = $1
		ORDER BY confidence_score DESC, target_game_id ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships for %s: %w", gameID, err)
	}
	defer rows.Close()

	var rels []*types.GameRelationship
	for rows.Next() {
		var rel types.GameRelationship
		if err := rows.Scan(
			&rel.SourceGameID, &rel.TargetGameID, &rel.RelationshipType,
			&rel.ConfidenceScore, &rel.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rels = append(rels, &rel)
	}
	return rels, rows.Err()
}

// TopRatedGames returns the highest-rated complete games.
func (s *Store) TopRatedGames(ctx context.Context, limit int) ([]*types.Game, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE has_complete_data AND rating > 0
		ORDER BY rating DESC, display_name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top rated games: %w", err)
	}
	return collectGames(rows)
}

// Stats returns catalog-wide counts and quality aggregates.
func (s *Store) Stats(ctx context.Context) (*storage.CatalogStats, error) {
	stats := &storage.CatalogStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN has_complete_data THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(quality_score), 0)
		FROM games
	`).Scan(&stats.TotalGames, &stats.CompleteGames, &stats.AverageQualityScore)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate game stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM game_relationships").Scan(&stats.TotalRelationships)
	if err != nil {
		return nil, fmt.Errorf("failed to count relationships: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN group_type = $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN group_type = $2 THEN 1 ELSE 0 END), 0)
		FROM game_groups
	`, types.GroupTypeVersion, types.GroupTypeSeries).
		Scan(&stats.TotalGroups, &stats.VersionGroups, &stats.SeriesGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}

	return stats, nil
}

// TruncateForTest removes all rows from every warehouse table. It is
// intended for use in tests only.
func (s *Store) TruncateForTest(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		TRUNCATE TABLE game_group_members, game_groups, game_relationships, games, game_embeddings
	`)
	if err != nil {
		return fmt.Errorf("postgres: failed to truncate warehouse: %w", err)
	}
	return nil
}
