package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ekstrand/ludex/internal/recommend"
	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/pkg/types"
)

// MockCatalog is a mock implementation of storage.Catalog for testing.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetGame(ctx context.Context, gameID string) (*types.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Game), args.Error(1)
}

func (m *MockCatalog) SearchGames(ctx context.Context, opts storage.SearchOptions) (*storage.PaginatedResult[types.Game], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PaginatedResult[types.Game]), args.Error(1)
}

func (m *MockCatalog) ListGames(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Game], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PaginatedResult[types.Game]), args.Error(1)
}

func (m *MockCatalog) ListGroups(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.GameGroup], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PaginatedResult[types.GameGroup]), args.Error(1)
}

func (m *MockCatalog) GetGroup(ctx context.Context, groupID string) (*types.GameGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GameGroup), args.Error(1)
}

func (m *MockCatalog) GetGroupMembers(ctx context.Context, groupID string) ([]*types.Game, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Game), args.Error(1)
}

func (m *MockCatalog) GetRelationships(ctx context.Context, gameID string) ([]*types.GameRelationship, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.GameRelationship), args.Error(1)
}

func (m *MockCatalog) TopRatedGames(ctx context.Context, limit int) ([]*types.Game, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Game), args.Error(1)
}

func (m *MockCatalog) Stats(ctx context.Context) (*storage.CatalogStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.CatalogStats), args.Error(1)
}

func (m *MockCatalog) Close() error {
	args := m.Called()
	return args.Error(0)
}

// mockIndex is a canned SimilarityIndex for testing.
type mockIndex struct {
	matches []recommend.Recommendation
	err     error
}

func (m *mockIndex) SimilarGames(gameID string, limit int) ([]recommend.Recommendation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.matches) > limit {
		return m.matches[:limit], nil
	}
	return m.matches, nil
}

func testGame(id, name string) *types.Game {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.Game{
		GameID:          id,
		CanonicalName:   name,
		DisplayName:     name,
		HasCompleteData: true,
		QualityScore:    80,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestGetGame_ReturnsGameWithRelationships(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetGame", mock.Anything, "1").Return(testGame("1", "the witcher 3"), nil)
	catalog.On("GetRelationships", mock.Anything, "1").Return([]*types.GameRelationship{
		{SourceGameID: "2", TargetGameID: "1", RelationshipType: types.RelationDuplicateOf, ConfidenceScore: 1.0},
	}, nil)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/games/1", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	h.GetGame(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp GameResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp.Game.GameID)
	assert.Len(t, resp.Relationships, 1)
	assert.Equal(t, types.RelationDuplicateOf, resp.Relationships[0].RelationshipType)
}

func TestGetGame_NotFound(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetGame", mock.Anything, "missing").Return(nil, storage.ErrNotFound)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/games/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.GetGame(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "game not found")
}

func TestSearchGames_RequiresQuery(t *testing.T) {
	h := NewAPIHandlers(new(MockCatalog), nil, nil)
	req := httptest.NewRequest("GET", "/api/games/search", nil)
	w := httptest.NewRecorder()

	h.SearchGames(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchGames_ReturnsResults(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("SearchGames", mock.Anything, mock.MatchedBy(func(opts storage.SearchOptions) bool {
		return opts.Query == "witcher" && opts.Limit == 5
	})).Return(&storage.PaginatedResult[types.Game]{
		Items: []*types.Game{testGame("1", "the witcher 3")},
		Total: 1,
	}, nil)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/games/search?q=witcher&limit=5", nil)
	w := httptest.NewRecorder()

	h.SearchGames(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "witcher", resp.Query)
	assert.Equal(t, 1, resp.Total)
	assert.Len(t, resp.Results, 1)
}

func TestListGames_PassesOptions(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("ListGames", mock.Anything, mock.MatchedBy(func(opts storage.ListOptions) bool {
		return opts.Page == 2 && opts.SortBy == "rating" && opts.CompleteOnly
	})).Return(&storage.PaginatedResult[types.Game]{
		Items: []*types.Game{testGame("1", "tetris")},
		Total: 30, Page: 2, PageSize: 20, HasMore: false,
	}, nil)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/games?page=2&sort_by=rating&complete=true", nil)
	w := httptest.NewRecorder()

	h.ListGames(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	catalog.AssertExpectations(t)
}

func TestGetRecommendations_EnrichesWithCatalogRecords(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetGame", mock.Anything, "2").Return(testGame("2", "quake"), nil)
	catalog.On("GetGame", mock.Anything, "3").Return(nil, storage.ErrNotFound)

	index := &mockIndex{matches: []recommend.Recommendation{
		{GameID: "2", Similarity: 0.92},
		{GameID: "3", Similarity: 0.41},
	}}

	h := NewAPIHandlers(catalog, index, nil)
	req := httptest.NewRequest("GET", "/api/games/1/recommendations", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	h.GetRecommendations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RecommendationsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp.GameID)
	assert.Len(t, resp.Recommendations, 2)
	assert.NotNil(t, resp.Recommendations[0].Game)
	assert.Nil(t, resp.Recommendations[1].Game)
	assert.InDelta(t, 0.92, resp.Recommendations[0].Similarity, 0.001)
}

func TestGetRecommendations_UnknownGame(t *testing.T) {
	index := &mockIndex{err: recommend.ErrUnknownGame}

	h := NewAPIHandlers(new(MockCatalog), index, nil)
	req := httptest.NewRequest("GET", "/api/games/999/recommendations", nil)
	req.SetPathValue("id", "999")
	w := httptest.NewRecorder()

	h.GetRecommendations(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecommendations_NoIndex(t *testing.T) {
	h := NewAPIHandlers(new(MockCatalog), nil, nil)
	req := httptest.NewRequest("GET", "/api/games/1/recommendations", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	h.GetRecommendations(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListGroups_RejectsUnknownType(t *testing.T) {
	h := NewAPIHandlers(new(MockCatalog), nil, nil)
	req := httptest.NewRequest("GET", "/api/groups?type=bogus", nil)
	w := httptest.NewRecorder()

	h.ListGroups(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGroup_ReturnsMembersWithGroup(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetGroup", mock.Anything, "g1").Return(&types.GameGroup{
		GroupID: "g1", GroupType: types.GroupTypeVersion,
		CanonicalName: "the witcher 3", RepresentativeGameID: "1", GameCount: 2,
	}, nil)
	catalog.On("GetGroupMembers", mock.Anything, "g1").Return([]*types.Game{
		testGame("1", "the witcher 3"),
		testGame("2", "the witcher 3"),
	}, nil)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/groups/g1", nil)
	req.SetPathValue("id", "g1")
	w := httptest.NewRecorder()

	h.GetGroup(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp GroupResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "g1", resp.Group.GroupID)
	assert.Len(t, resp.Members, 2)
}

func TestGetStats(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("Stats", mock.Anything).Return(&storage.CatalogStats{
		TotalGames: 100, CompleteGames: 80, TotalGroups: 10,
	}, nil)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()

	h.GetStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats storage.CatalogStats
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 100, stats.TotalGames)
}

func TestTopRatedGames_ClampsLimit(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("TopRatedGames", mock.Anything, 100).Return([]*types.Game{}, nil)

	h := NewAPIHandlers(catalog, nil, nil)
	req := httptest.NewRequest("GET", "/api/games/top?limit=5000", nil)
	w := httptest.NewRecorder()

	h.TopRatedGames(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	catalog.AssertExpectations(t)
}
