// Package igdb implements a client for the IGDB catalog API with rate
// limiting, OAuth token management, and circuit breaking. It handles
// authentication, request formatting, and pagination; retry and backoff for
// upstream throttling live here, never in the cleaning engine.
package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ekstrand/ludex/pkg/types"
)

const (
	defaultBaseURL = "https://api.igdb.com/v4"
	defaultAuthURL = "https://id.twitch.tv/oauth2/token"

	// tokenSafetyMargin is subtracted from the advertised token lifetime so
	// a token is refreshed well before it actually expires.
	tokenSafetyMargin = time.Hour

	// throttleRetryDelay is how long to wait before retrying after the
	// upstream answers 429 Too Many Requests.
	throttleRetryDelay = 5 * time.Second
)

// DefaultFields are the record fields fetched for the cleaning pipeline.
var DefaultFields = []string{
	"id",
	"name",
	"summary",
	"storyline",
	"first_release_date",
	"rating",
	"rating_count",
	"cover.url",
	"genres.id",
	"genres.name",
	"platforms.id",
	"platforms.name",
	"themes.id",
	"themes.name",
}

// Config holds client construction options.
type Config struct {
	ClientID     string
	ClientSecret string
	RateLimit    float64 // requests per second (default: 4)
	BatchSize    int     // records per request (default: 500)
	BaseURL      string  // override for testing
	AuthURL      string  // override for testing
	HTTPClient   *http.Client
	Logger       *log.Logger
	Breaker      BreakerConfig
}

// Client is a rate-limited IGDB API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *breaker
	logger     *log.Logger

	clientID     string
	clientSecret string
	baseURL      string
	authURL      string
	batchSize    int
	retryDelay   time.Duration

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates an IGDB client. Authentication is lazy: the first
// request obtains an access token.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("igdb: client id and secret are required")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 4.0
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &Client{
		httpClient:   cfg.HTTPClient,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		breaker:      newBreaker(cfg.Breaker),
		logger:       cfg.Logger,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      cfg.BaseURL,
		authURL:      cfg.AuthURL,
		batchSize:    cfg.BatchSize,
		retryDelay:   throttleRetryDelay,
	}, nil
}

// BatchSize returns the configured per-request record limit.
func (c *Client) BatchSize() int {
	return c.batchSize
}

// authResponse is the Twitch OAuth2 token grant response.
type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// authenticate obtains a fresh access token via the client-credentials
// grant. Callers must hold c.mu.
func (c *Client) authenticate(ctx context.Context) error {
	c.logger.Printf("authenticating with catalog API")

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("igdb: failed to build auth request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("igdb: authentication failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("igdb: authentication failed with status %d", resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("igdb: failed to decode auth response: %w", err)
	}

	c.accessToken = auth.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(auth.ExpiresIn)*time.Second - tokenSafetyMargin)
	c.logger.Printf("authentication successful, token expires at %s", c.tokenExpiry.Format(time.RFC3339))

	return nil
}

// token returns a valid access token, refreshing it when expired or absent.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken == "" || !time.Now().Before(c.tokenExpiry) {
		if err := c.authenticate(ctx); err != nil {
			return "", err
		}
	}
	return c.accessToken, nil
}

// query makes a rate-limited request to an API endpoint with the given
// body in IGDB's query format, decoding the JSON response into out.
func (c *Client) query(ctx context.Context, endpoint, body string, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	result, err := c.breaker.execute(ctx, func() (interface{}, error) {
		return c.doRequest(ctx, endpoint, body, token)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result.([]byte), out); err != nil {
		return fmt.Errorf("igdb: failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// doRequest performs one HTTP round trip, retrying once after a throttling
// response.
func (c *Client) doRequest(ctx context.Context, endpoint, body, token string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("igdb: failed to build request: %w", err)
		}
		req.Header.Set("Client-ID", c.clientID)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "text/plain")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("igdb: request failed: %w", err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("igdb: failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return data, nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt == 0:
			c.logger.Printf("rate limit exceeded, retrying after %s", c.retryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		default:
			return nil, fmt.Errorf("igdb: %s returned status %d", endpoint, resp.StatusCode)
		}
	}
}

// fieldList renders the requested fields, defaulting to DefaultFields.
func fieldList(fields []string) string {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return strings.Join(fields, ",")
}

// buildQuery composes a request body in IGDB's query format.
func buildQuery(fields []string, limit, offset int, filters string) string {
	parts := []string{
		fmt.Sprintf("fields %s;", fieldList(fields)),
		fmt.Sprintf("limit %d;", limit),
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("offset %d;", offset))
	}
	if filters != "" {
		parts = append(parts, filters)
	}
	return strings.Join(parts, " ")
}

// GetGames fetches one page of games. A non-positive limit uses the
// configured batch size; limits above the batch size are clamped to it.
func (c *Client) GetGames(ctx context.Context, fields []string, limit, offset int, filters string) ([]*types.RawGame, error) {
	if limit <= 0 || limit > c.batchSize {
		limit = c.batchSize
	}

	c.logger.Printf("fetching games with offset %d, limit %d", offset, limit)

	var games []*types.RawGame
	if err := c.query(ctx, "games", buildQuery(fields, limit, offset, filters), &games); err != nil {
		return nil, err
	}
	return games, nil
}

// GetAllGames fetches every matching game with pagination. maxGames zero
// means unlimited.
func (c *Client) GetAllGames(ctx context.Context, fields []string, filters string, maxGames int) ([]*types.RawGame, error) {
	var all []*types.RawGame
	offset := 0

	for {
		batchLimit := c.batchSize
		if maxGames > 0 {
			remaining := maxGames - len(all)
			if remaining <= 0 {
				break
			}
			if remaining < batchLimit {
				batchLimit = remaining
			}
		}

		games, err := c.GetGames(ctx, fields, batchLimit, offset, filters)
		if err != nil {
			return nil, err
		}
		if len(games) == 0 {
			break
		}

		all = append(all, games...)
		c.logger.Printf("fetched %d games, total: %d", len(games), len(all))

		// Fewer records than requested means the catalog is exhausted.
		if len(games) < batchLimit {
			break
		}
		offset += len(games)
	}

	return all, nil
}

// GetGameByID fetches a single game, or nil when it does not exist.
func (c *Client) GetGameByID(ctx context.Context, gameID int64, fields []string) (*types.RawGame, error) {
	body := fmt.Sprintf("fields %s; where id = %d;", fieldList(fields), gameID)

	var games []*types.RawGame
	if err := c.query(ctx, "games", body, &games); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}
	return games[0], nil
}

// SearchGames searches games by name.
func (c *Client) SearchGames(ctx context.Context, searchTerm string, fields []string, limit int) ([]*types.RawGame, error) {
	if limit <= 0 {
		limit = 10
	}
	body := fmt.Sprintf("fields %s; search %q; limit %d;", fieldList(fields), searchTerm, limit)

	var games []*types.RawGame
	if err := c.query(ctx, "games", body, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// BreakerState reports the circuit breaker state for health endpoints.
func (c *Client) BreakerState() string {
	return c.breaker.state()
}
