package sqlite

// Schema defines the SQLite warehouse schema: canonical games plus the
// relationship and grouping tables produced by the cleaning pipeline.
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id           TEXT PRIMARY KEY,
	canonical_name    TEXT NOT NULL,
	display_name      TEXT NOT NULL,
	release_date      TIMESTAMP,
	summary           TEXT NOT NULL DEFAULT '',
	rating            REAL NOT NULL DEFAULT 0,
	cover_url         TEXT NOT NULL DEFAULT '',
	has_complete_data INTEGER NOT NULL DEFAULT 0,
	quality_score     REAL NOT NULL DEFAULT 0,
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_canonical_name ON games(canonical_name);
CREATE INDEX IF NOT EXISTS idx_games_quality_score ON games(quality_score DESC);
CREATE INDEX IF NOT EXISTS idx_games_rating ON games(rating DESC);

CREATE TABLE IF NOT EXISTS game_relationships (
	source_game_id    TEXT NOT NULL,
	target_game_id    TEXT NOT NULL,
	relationship_type TEXT NOT NULL,
	confidence_score  REAL NOT NULL,
	created_at        TIMESTAMP NOT NULL,
	PRIMARY KEY (source_game_id, target_game_id, relationship_type)
);

CREATE INDEX IF NOT EXISTS idx_relationships_source ON game_relationships(source_game_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON game_relationships(target_game_id);

CREATE TABLE IF NOT EXISTS game_groups (
	group_id               TEXT PRIMARY KEY,
	group_type             TEXT NOT NULL,
	canonical_name         TEXT NOT NULL,
	representative_game_id TEXT NOT NULL,
	game_count             INTEGER NOT NULL,
	created_at             TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_groups_type ON game_groups(group_type);
CREATE INDEX IF NOT EXISTS idx_groups_canonical_name ON game_groups(canonical_name);

CREATE TABLE IF NOT EXISTS game_group_members (
	group_id   TEXT NOT NULL,
	game_id    TEXT NOT NULL,
	is_primary INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (group_id, game_id)
);

CREATE INDEX IF NOT EXISTS idx_members_game ON game_group_members(game_id);
`
