// Package api is the HTTP client for the MovieHub server endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"moviehub/internal/core/domain"

	"go.uber.org/zap"
)

const (
	authPath   = "/api/auth"
	moviesPath = "/api/movies"

	// maxErrorBody bounds how much of a failed response ends up in an error.
	maxErrorBody = 4 << 10
)

// HTTPError is a non-2xx answer from the catalog endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d - %s", e.StatusCode, e.Body)
}

// AuthResponse is the account endpoint envelope. It is returned for every
// decodable answer, including 4xx and 5xx ones.
type AuthResponse struct {
	Success bool            `json:"success"`
	User    *domain.Profile `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

type authRequest struct {
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	return c.auth(ctx, authRequest{Action: "signup", Name: name, Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.auth(ctx, authRequest{Action: "login", Email: email, Password: password})
}

func (c *Client) auth(ctx context.Context, body authRequest) (*AuthResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("auth response",
		zap.String("action", body.Action),
		zap.Int("status", resp.StatusCode))

	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode auth response (status %d): %w", resp.StatusCode, err)
	}
	return &out, nil
}

// Movies fetches the first discover page for a provider genre id.
func (c *Client) Movies(ctx context.Context, genreID int) ([]domain.Movie, error) {
	q := url.Values{}
	q.Set("genre", strconv.Itoa(genreID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+moviesPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build movies request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("movies response",
		zap.Int("genre_id", genreID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var page domain.DiscoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	return page.Results, nil
}
