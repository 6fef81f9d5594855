package postgres

import (
	"context"
	"database/sql"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/ekstrand/ludex/internal/storage"
)

// SimilarGame is a nearest-neighbor match from a vector similarity query.
type SimilarGame struct {
	GameID string

	// Similarity is cosine similarity in [0, 1], higher is closer.
	Similarity float64
}

// StoreEmbedding stores a recommendation feature vector for a game. Requires
// the pgvector extension.
func (s *Store) StoreEmbedding(ctx context.Context, gameID string, embedding []float32, model string) error {
	if gameID == "" {
		return fmt.Errorf("%w: game ID is required", storage.ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", storage.ErrInvalidInput)
	}
	if !s.pgvectorAvailable {
		return fmt.Errorf("postgres: pgvector extension is not installed")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_embeddings (game_id, dimension, model, embedding_vec, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (game_id) DO UPDATE SET
			dimension = excluded.dimension,
			model = excluded.model,
			embedding_vec = excluded.embedding_vec,
			updated_at = CURRENT_TIMESTAMP
	`, gameID, len(embedding), model, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to store embedding for %s: %w", gameID, err)
	}
	return nil
}

// GetEmbedding retrieves the stored feature vector for a game.
// Returns storage.ErrNotFound when no embedding exists.
func (s *Store) GetEmbedding(ctx context.Context, gameID string) ([]float32, error) {
	if gameID == "" {
		return nil, fmt.Errorf("%w: game ID is required", storage.ErrInvalidInput)
	}

	var vec pgvector.Vector
	err := s.db.QueryRowContext(ctx,
		"SELECT embedding_vec FROM game_embeddings WHERE game_id = $1", gameID).Scan(&vec)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding for %s: %w", gameID, err)
	}
	return vec.Slice(), nil
}

// SimilarGames returns the k games whose embeddings are closest to the given
// game's, by cosine distance, excluding the game itself.
func (s *Store) SimilarGames(ctx context.Context, gameID string, k int) ([]SimilarGame, error) {
	if gameID == "" {
		return nil, fmt.Errorf("%w: game ID is required", storage.ErrInvalidInput)
	}
	if k < 1 {
		k = 10
	}
	if !s.pgvectorAvailable {
		return nil, fmt.Errorf("postgres: pgvector extension is not installed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.game_id, 1 - (e.embedding_vec <=> ref.embedding_vec) AS similarity
		FROM game_embeddings e,
		     (SELECT embedding_vec FROM game_embeddings WHERE game_id = $1) ref
		WHERE e.game_id != $1
		ORDER BY e.embedding_vec <=> ref.embedding_vec
		LIMIT $2
	`, gameID, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar games for %s: %w", gameID, err)
	}
	defer rows.Close()

	var matches []SimilarGame
	for rows.Next() {
		var match SimilarGame
		if err := rows.Scan(&match.GameID, &match.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan similarity row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}
