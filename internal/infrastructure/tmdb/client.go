package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moviehub/pkg/circuitbreaker"
	"moviehub/pkg/optimize"
	"moviehub/pkg/retry"
	"moviehub/pkg/tracing"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	discoverPath = "/discover/movie"
	// provider bodies for one discover page are a few tens of KiB
	maxBodyBytes = 4 << 20
)

var bodyPool = optimize.NewBufferPool(32<<10, 1<<20)

// Outcome labels reported to Metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeStatusError = "status_error"
	OutcomeTransport   = "transport_error"
	OutcomeRejected    = "circuit_open"
)

// Metrics receives one observation per outbound attempt.
type Metrics interface {
	RecordUpstreamRequest(outcome string, duration time.Duration)
	RecordCircuitState(state string)
}

type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration

	Retry retry.Config
	// Breaker is nil when the circuit breaker is disabled.
	Breaker *circuitbreaker.Config
}

// Client issues discover requests against the TMDb v3 API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    Metrics
	logger     *zap.SugaredLogger
}

// NewClient builds a client. metrics may be nil.
func NewClient(cfg Config, metrics Metrics, logger *zap.SugaredLogger) *Client {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Retry.Retryable = isRetryable

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    metrics,
		logger:     logger,
	}

	if cfg.Breaker != nil {
		// Only transport errors and 5xx replies mean the provider is unhealthy.
		breakerCfg := *cfg.Breaker
		breakerCfg.IsFailure = isRetryable
		c.breaker = circuitbreaker.New(breakerCfg)
		c.breaker.OnStateChange(func(from, to circuitbreaker.State) {
			logger.Warnw("tmdb circuit breaker state changed", "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.RecordCircuitState(to.String())
			}
		})
	}

	return c
}

// DiscoverByGenre fetches the first page of the most popular movies in
// genreID and returns the body unchanged. Errors are *StatusError or
// *TransportError.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int) ([]byte, error) {
	ctx, span := tracing.TraceUpstream(ctx, "discover", genreID)
	defer span.End()

	body, err := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) ([]byte, error) {
		if c.breaker == nil {
			return c.fetch(ctx, genreID)
		}
		body, err := circuitbreaker.Call(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
			return c.fetch(ctx, genreID)
		})
		if errors.Is(err, circuitbreaker.ErrOpen) {
			c.observe(OutcomeRejected, 0)
			return nil, &TransportError{Err: err}
		}
		return body, err
	})
	if err != nil {
		err = lastProviderError(err)
		tracing.RecordError(ctx, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return body, nil
}

func (c *Client) fetch(ctx context.Context, genreID int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.discoverURL(genreID), nil)
	if err != nil {
		return nil, fmt.Errorf("build discover request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(OutcomeTransport, time.Since(start))
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	tracing.AddSpanAttributes(ctx, tracing.StatusCodeKey.Int(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.observe(OutcomeStatusError, time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	body, err := bodyPool.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(OutcomeTransport, time.Since(start))
		return nil, newTransportError(err)
	}

	if !json.Valid(body) {
		c.observe(OutcomeStatusError, time.Since(start))
		return nil, &TransportError{Err: errInvalidPayload}
	}

	c.observe(OutcomeSuccess, time.Since(start))
	return body, nil
}

func (c *Client) discoverURL(genreID int) string {
	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("with_genres", strconv.Itoa(genreID))
	q.Set("sort_by", "popularity.desc")
	q.Set("page", "1")
	q.Set("language", c.cfg.Language)
	return c.cfg.BaseURL + discoverPath + "?" + q.Encode()
}

// CircuitState reports the breaker state, or "disabled".
func (c *Client) CircuitState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.GetState().String()
}

func (c *Client) observe(outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(outcome, d)
	}
}

// statusText returns the reason phrase the provider sent, falling back to
// the standard one.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// lastProviderError strips retry bookkeeping so callers see the error of
// the final attempt.
func lastProviderError(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr
	}
	return newTransportError(err)
}
