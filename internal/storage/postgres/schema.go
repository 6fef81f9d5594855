package postgres

// Schema defines the PostgreSQL warehouse schema. It mirrors the SQLite
// schema plus a table of recommendation embeddings.
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id           TEXT PRIMARY KEY,
	canonical_name    TEXT NOT NULL,
	display_name      TEXT NOT NULL,
	release_date      TIMESTAMPTZ,
	summary           TEXT NOT NULL DEFAULT '',
	rating            DOUBLE PRECISION NOT NULL DEFAULT 0,
	cover_url         TEXT NOT NULL DEFAULT '',
	has_complete_data BOOLEAN NOT NULL DEFAULT FALSE,
	quality_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_canonical_name ON games(canonical_name);
CREATE INDEX IF NOT EXISTS idx_games_quality_score ON games(quality_score DESC);
CREATE INDEX IF NOT EXISTS idx_games_rating ON games(rating DESC);

CREATE TABLE IF NOT EXISTS game_relationships (
	source_game_id    TEXT NOT NULL,
	target_game_id    TEXT NOT NULL,
	relationship_type TEXT NOT NULL,
	confidence_score  DOUBLE PRECISION NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
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
	created_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_groups_type ON game_groups(group_type);
CREATE INDEX IF NOT EXISTS idx_groups_canonical_name ON game_groups(canonical_name);

CREATE TABLE IF NOT EXISTS game_group_members (
	group_id   TEXT NOT NULL,
	game_id    TEXT NOT NULL,
	is_primary BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (group_id, game_id)
);

CREATE INDEX IF NOT EXISTS idx_members_game ON game_group_members(game_id);

CREATE TABLE IF NOT EXISTS game_embeddings (
	game_id    TEXT PRIMARY KEY,
	dimension  INTEGER NOT NULL,
	model      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SchemaPgvector adds the vector column used for similarity queries. It is
// applied only when the pgvector extension is installed.
const SchemaPgvector = `
CREATE EXTENSION IF NOT EXISTS vector;
ALTER TABLE game_embeddings ADD COLUMN IF NOT EXISTS embedding_vec vector;
`
