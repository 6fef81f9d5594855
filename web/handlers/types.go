package handlers

import (
	"github.com/ekstrand/ludex/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// GameResponse is a canonical game record plus its relationship edges.
type GameResponse struct {
	Game          *types.Game               `json:"game"`
	Relationships []*types.GameRelationship `json:"relationships"`
}

// SearchResponse is the response format for GET /api/games/search.
type SearchResponse struct {
	Results []*types.Game `json:"results"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Query   string        `json:"query"`
}

// GroupListResponse is the response format for GET /api/groups.
type GroupListResponse struct {
	Groups []*types.GameGroup `json:"groups"`
	Total  int                `json:"total"`
	Page   int                `json:"page"`
}

// GroupResponse is a group together with its member games.
type GroupResponse struct {
	Group   *types.GameGroup `json:"group"`
	Members []*types.Game    `json:"members"`
}

// RecommendationsResponse is the response format for
// GET /api/games/{id}/recommendations.
type RecommendationsResponse struct {
	GameID          string            `json:"game_id"`
	Recommendations []RecommendedGame `json:"recommendations"`
}

// RecommendedGame pairs a similarity match with the catalog record, which
// may be absent when the recommended game fell out of the warehouse.
type RecommendedGame struct {
	GameID     string      `json:"game_id"`
	Similarity float64     `json:"similarity_score"`
	Game       *types.Game `json:"game,omitempty"`
}
