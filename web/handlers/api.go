package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ekstrand/ludex/internal/recommend"
	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/pkg/types"
)

// SimilarityIndex is the slice of the recommender the API needs. Nil when
// the server runs without a recommendation index.
type SimilarityIndex interface {
	SimilarGames(gameID string, limit int) ([]recommend.Recommendation, error)
}

// APIHandlers contains HTTP handlers for the catalog REST API.
type APIHandlers struct {
	catalog     storage.Catalog
	recommender SimilarityIndex
	logger      *log.Logger
}

// NewAPIHandlers creates a new APIHandlers instance. recommender may be nil,
// in which case the recommendations endpoint returns 503.
func NewAPIHandlers(catalog storage.Catalog, recommender SimilarityIndex, logger *log.Logger) *APIHandlers {
	if logger == nil {
		logger = log.Default()
	}
	return &APIHandlers{
		catalog:     catalog,
		recommender: recommender,
		logger:      logger,
	}
}

// GetStats handles GET /api/stats - catalog-wide counts and quality aggregates.
func (h *APIHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		h.logger.Printf("stats query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ListGames handles GET /api/games - list games with pagination and sorting.
//
// Query parameters:
//   - page       — page number (default 1)
//   - limit      — results per page (default 20, max 100)
//   - sort_by    — quality_score, rating, release_date, display_name (default quality_score)
//   - sort_order — asc or desc (default desc)
//   - complete   — "true" restricts to records passing the completeness gate
func (h *APIHandlers) ListGames(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Page:         parseInt(r.URL.Query().Get("page"), 1),
		Limit:        parseInt(r.URL.Query().Get("limit"), 20),
		SortBy:       r.URL.Query().Get("sort_by"),
		SortOrder:    r.URL.Query().Get("sort_order"),
		CompleteOnly: r.URL.Query().Get("complete") == "true",
	}

	result, err := h.catalog.ListGames(r.Context(), opts)
	if err != nil {
		h.logger.Printf("list games failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list games", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SearchGames handles GET /api/games/search - name search over the catalog.
//
// Query parameters:
//   - q           — search query (required; "query" accepted as an alias)
//   - limit       — maximum results (default 20, max 100)
//   - offset      — results to skip
//   - complete    — "true" restricts to complete records
//   - min_quality — minimum quality score (0-100)
func (h *APIHandlers) SearchGames(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		query = strings.TrimSpace(r.URL.Query().Get("query"))
	}
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter 'q' is required", nil)
		return
	}

	opts := storage.SearchOptions{
		Query:           query,
		Limit:           parseInt(r.URL.Query().Get("limit"), 20),
		Offset:          parseInt(r.URL.Query().Get("offset"), 0),
		CompleteOnly:    r.URL.Query().Get("complete") == "true",
		MinQualityScore: parseFloat(r.URL.Query().Get("min_quality"), 0),
	}

	result, err := h.catalog.SearchGames(r.Context(), opts)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid search parameters", err)
			return
		}
		h.logger.Printf("search %q failed: %v", query, err)
		respondError(w, http.StatusInternalServerError, "search failed", err)
		return
	}

	page := 1
	if opts.Limit > 0 {
		page = opts.Offset/opts.Limit + 1
	}
	respondJSON(w, http.StatusOK, SearchResponse{
		Results: result.Items,
		Total:   result.Total,
		Page:    page,
		Query:   query,
	})
}

// GetGame handles GET /api/games/{id} - a game plus its relationship edges.
func (h *APIHandlers) GetGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "game ID is required", nil)
		return
	}

	game, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "game not found", err)
			return
		}
		h.logger.Printf("get game %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get game", err)
		return
	}

	relationships, err := h.catalog.GetRelationships(r.Context(), id)
	if err != nil {
		h.logger.Printf("get relationships for %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get relationships", err)
		return
	}

	respondJSON(w, http.StatusOK, GameResponse{
		Game:          game,
		Relationships: relationships,
	})
}

// TopRatedGames handles GET /api/games/top - highest-rated complete games.
func (h *APIHandlers) TopRatedGames(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 10)
	if limit > 100 {
		limit = 100
	}

	games, err := h.catalog.TopRatedGames(r.Context(), limit)
	if err != nil {
		h.logger.Printf("top rated query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get top rated games", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": games,
		"count":   len(games),
	})
}

// GetRecommendations handles GET /api/games/{id}/recommendations - games
// similar to the given game by summary and categorical features. Matches are
// enriched with catalog records when present; a match whose game has fallen
// out of the warehouse is returned with the ID and score only.
func (h *APIHandlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "game ID is required", nil)
		return
	}
	if h.recommender == nil {
		respondError(w, http.StatusServiceUnavailable, "recommendations are not available", nil)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 10)
	if limit > 50 {
		limit = 50
	}

	matches, err := h.recommender.SimilarGames(id, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrUnknownGame) {
			respondError(w, http.StatusNotFound, "game has no recommendations", err)
			return
		}
		h.logger.Printf("recommendations for %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get recommendations", err)
		return
	}

	recommendations := make([]RecommendedGame, 0, len(matches))
	for _, match := range matches {
		rec := RecommendedGame{
			GameID:     match.GameID,
			Similarity: match.Similarity,
		}
		game, err := h.catalog.GetGame(r.Context(), match.GameID)
		if err == nil {
			rec.Game = game
		} else if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Printf("recommendation lookup %s failed: %v", match.GameID, err)
		}
		recommendations = append(recommendations, rec)
	}

	respondJSON(w, http.StatusOK, RecommendationsResponse{
		GameID:          id,
		Recommendations: recommendations,
	})
}

// ListGroups handles GET /api/groups - list game groups with pagination.
//
// Query parameters:
//   - page, limit, sort_by, sort_order — as for ListGames
//   - type — "version_group" or "series" filter
func (h *APIHandlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	groupType := r.URL.Query().Get("type")
	if groupType != "" && groupType != types.GroupTypeVersion && groupType != types.GroupTypeSeries {
		respondError(w, http.StatusBadRequest, "type must be 'version_group' or 'series'", nil)
		return
	}

	opts := storage.ListOptions{
		Page:      parseInt(r.URL.Query().Get("page"), 1),
		Limit:     parseInt(r.URL.Query().Get("limit"), 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
		GroupType: groupType,
	}

	result, err := h.catalog.ListGroups(r.Context(), opts)
	if err != nil {
		h.logger.Printf("list groups failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list groups", err)
		return
	}
	respondJSON(w, http.StatusOK, GroupListResponse{
		Groups: result.Items,
		Total:  result.Total,
		Page:   result.Page,
	})
}

// GetGroup handles GET /api/groups/{id} - a group with its member games,
// primary member first.
func (h *APIHandlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "group ID is required", nil)
		return
	}

	group, err := h.catalog.GetGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "group not found", err)
			return
		}
		h.logger.Printf("get group %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get group", err)
		return
	}

	members, err := h.catalog.GetGroupMembers(r.Context(), id)
	if err != nil {
		h.logger.Printf("get group members %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get group members", err)
		return
	}

	respondJSON(w, http.StatusOK, GroupResponse{
		Group:   group,
		Members: members,
	})
}

// GetGroupMembers handles GET /api/groups/{id}/members.
func (h *APIHandlers) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "group ID is required", nil)
		return
	}

	if _, err := h.catalog.GetGroup(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "group not found", err)
			return
		}
		h.logger.Printf("get group %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get group", err)
		return
	}

	members, err := h.catalog.GetGroupMembers(r.Context(), id)
	if err != nil {
		h.logger.Printf("get group members %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get group members", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"group_id": id,
		"members":  members,
		"count":    len(members),
	})
}

// Helper functions

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// parseFloat parses a float from a string, returning defaultValue if parsing fails.
func parseFloat(s string, defaultValue float64) float64 {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, nothing more we can do.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = err.Error()
	}
	respondJSON(w, statusCode, errResp)
}
