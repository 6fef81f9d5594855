// Package server provides HTTP server initialization and lifecycle management
// for the Ludex catalog API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/ekstrand/ludex/internal/config"
	"github.com/ekstrand/ludex/internal/storage"
	"github.com/ekstrand/ludex/web/handlers"
)

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the ProgressHub for wiring pipeline event broadcasts.
// The recommender may be nil, in which case the recommendations endpoint
// returns 503.
func Start(ctx context.Context, cfg *config.Config, catalog storage.Catalog, recommender handlers.SimilarityIndex) (string, *handlers.ProgressHub, error) {
	mux := http.NewServeMux()

	hub := handlers.NewProgressHub([]string{
		fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
	})
	go hub.Run()

	// 10 req/sec, burst of 20
	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	apiHandlers := handlers.NewAPIHandlers(catalog, recommender, log.Default())

	// API routes (require auth when a token is configured)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/stats", apiHandlers.GetStats)
	apiMux.HandleFunc("GET /api/games", apiHandlers.ListGames)
	apiMux.HandleFunc("GET /api/games/search", apiHandlers.SearchGames)
	apiMux.HandleFunc("GET /api/games/top", apiHandlers.TopRatedGames)
	apiMux.HandleFunc("GET /api/games/{id}", apiHandlers.GetGame)
	apiMux.HandleFunc("GET /api/games/{id}/recommendations", apiHandlers.GetRecommendations)
	apiMux.HandleFunc("GET /api/groups", apiHandlers.ListGroups)
	apiMux.HandleFunc("GET /api/groups/{id}", apiHandlers.GetGroup)
	apiMux.HandleFunc("GET /api/groups/{id}/members", apiHandlers.GetGroupMembers)

	// Health endpoint, no auth required, used by monitoring
	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	}
	mux.HandleFunc("GET /health", health)
	mux.HandleFunc("GET /api/health", health)

	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required - origin validation handles security)
	mux.Handle("/ws", hub)

	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.SecurityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		hub.Stop()
		return "", nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		hub.Stop()
	}()

	return actualAddr, hub, nil
}
