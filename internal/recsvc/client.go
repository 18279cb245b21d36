// Package recsvc talks to the external feature-extraction and clustering
// recommendation service.
package recsvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"musicapp/internal/metrics"
)

// ErrNotConfigured is returned when no base URL was provided.
var ErrNotConfigured = errors.New("recommendation service not configured")

// StatusError reports a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recommendation service returned %d: %s", e.StatusCode, e.Detail)
}

// ExtractRequest asks the service to extract audio features for a song.
type ExtractRequest struct {
	SongID string `json:"songId"`
	File   string `json:"file"`
	Name   string `json:"name,omitempty"`
	Album  string `json:"album,omitempty"`
}

// Hit is a single recommendation from the service's reference dataset.
type Hit struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	Artists    string             `json:"artists,omitempty"`
	Year       *int               `json:"year,omitempty"`
	Popularity *int               `json:"popularity,omitempty"`
	Distance   *float64           `json:"distance,omitempty"`
	Features   map[string]float64 `json:"features,omitempty"`
}

// Recommendations is the payload of the song and user endpoints.
type Recommendations struct {
	Success         bool  `json:"success"`
	Cluster         int   `json:"cluster"`
	FavoritesUsed   int   `json:"favoritesUsed,omitempty"`
	Count           int   `json:"count"`
	Recommendations []Hit `json:"recommendations"`
}

// BreakerConfig tunes the circuit breaker around outbound calls.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig trips after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Client calls the recommendation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[any]
}

// New creates a client for baseURL. An empty baseURL yields a client whose
// calls fail with ErrNotConfigured.
func New(baseURL string, httpClient *http.Client, cfg BreakerConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	const name = "recsvc"
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// 4xx answers are the caller's problem, not the service's health.
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
		},
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

// Configured reports whether a base URL was provided.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// BreakerState returns the breaker's current state name.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil, &body); err != nil {
		return err
	}
	if !body.OK {
		return errors.New("recommendation service reported not ok")
	}
	return nil
}

// Extract schedules feature extraction for a song.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) error {
	if req.SongID == "" || req.File == "" {
		return errors.New("songId and file are required")
	}
	return c.do(ctx, "extract", http.MethodPost, "/api/recommendation/extract", nil, req, nil)
}

// ForSong returns dataset neighbours of a song's extracted features.
func (c *Client) ForSong(ctx context.Context, songID string, limit int) (*Recommendations, error) {
	var out Recommendations
	path := "/api/recommendation/song/" + url.PathEscape(songID)
	if err := c.do(ctx, "song", http.MethodGet, path, limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForUser returns dataset neighbours of the centroid of a user's favorites.
func (c *Client) ForUser(ctx context.Context, userID string, limit int) (*Recommendations, error) {
	var out Recommendations
	path := "/api/recommendation/user/" + url.PathEscape(userID)
	if err := c.do(ctx, "user", http.MethodGet, path, limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

func (c *Client) do(ctx context.Context, operation, method, path string, params url.Values, payload, result any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, method, path, params, payload, result)
	})
	metrics.RecordRecServiceCall(operation, err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, payload, result any) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(resp.Body)}
	}
	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail extracts FastAPI's {"detail": ...} message when present.
func errorDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}
