// Package sqlite implements the warehouse and catalog interfaces on SQLite.
// It is CGO-free (modernc.org/sqlite) and is the default backend for
// development and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/pkg/types"
)

// Store implements storage.Warehouse and storage.Catalog using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database, configures WAL mode, and creates the
// schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
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

	// Full replace: child tables first so the delete order never matters.
	for _, table := range []string{
		types.TableMembers,
		types.TableGroups,
		types.TableRelationships,
		types.TableGames,
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		) VALUES (?, ?, ?, ?, ?)
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
		) VALUES (?, ?, ?, ?, ?, ?)
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
		VALUES (?, ?, ?, ?)
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
		"SELECT "+gameColumns+" FROM games WHERE game_id = ?", gameID)
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

	where := "WHERE (display_name LIKE ? COLLATE NOCASE OR canonical_name LIKE ? COLLATE NOCASE)"
	args := []interface{}{"%" + opts.Query + "%", "%" + opts.Query + "%"}
	if opts.CompleteOnly {
		where += " AND has_complete_data = 1"
	}
	if opts.MinQualityScore > 0 {
		where += " AND quality_score >= ?"
		args = append(args, opts.MinQualityScore)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	query := "SELECT " + gameColumns + " FROM games " + where +
		" ORDER BY quality_score DESC, display_name ASC LIMIT ? OFFSET ?"
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
		where = "WHERE has_complete_data = 1"
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games "+where).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	// SortBy and SortOrder are whitelist-validated by Normalize.
	query := fmt.Sprintf(
		"SELECT %s FROM games %s ORDER BY %s %s LIMIT ? OFFSET ?",
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

const groupColumns = `group_id, group_type, canonical_name, representative_game_id, game_count, created_at`

// ListGroups retrieves game groups with pagination.
func (s *Store) ListGroups(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.GameGroup], error) {
	opts.Normalize()

	where := ""
	args := []interface{}{}
	if opts.GroupType != "" {
		where = "WHERE group_type = ?"
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
		"SELECT %s FROM game_groups %s ORDER BY %s %s LIMIT ? OFFSET ?",
		groupColumns, where, sortBy, strings.ToUpper(opts.SortOrder))
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
		"SELECT "+groupColumns+" FROM game_groups WHERE group_id = ?", groupID)
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
		SELECT games.game_id, games.canonical_name, games.display_name, games.release_date, games.summary,
			games.rating, games.cover_url, games.has_complete_data, games.quality_score, games.created_at, games.updated_at
		FROM games
		JOIN game_group_members ON game_group_members.game_id = games.game_id
		WHERE game_group_members.group_id = ?
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
		WHERE source_game_id = ? OR target_game_id = ?
		ORDER BY confidence_score DESC, target_game_id ASC
	`, gameID, gameID)
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
		WHERE has_complete_data = 1 AND rating > 0
		ORDER BY rating DESC, display_name ASC
		LIMIT ?
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
			COALESCE(SUM(has_complete_data), 0),
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
			COALESCE(SUM(CASE WHEN group_type = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN group_type = ? THEN 1 ELSE 0 END), 0)
		FROM game_groups
	`, types.GroupTypeVersion, types.GroupTypeSeries).
		Scan(&stats.TotalGroups, &stats.VersionGroups, &stats.SeriesGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}

	return stats, nil
}
