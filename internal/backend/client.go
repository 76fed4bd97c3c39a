// Package backend reads bid/ask, opportunity, arbitrage and trade rows from
// the bitbot HTTP API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rewired-gh/arbdash/internal/logger"
	"github.com/rewired-gh/arbdash/internal/metrics"
	"github.com/rewired-gh/arbdash/internal/models"
	"github.com/rewired-gh/arbdash/internal/route"
)

const maxBodyBytes = 32 << 20

// ErrUnroutable is reported for requests that have no backend endpoint.
var ErrUnroutable = errors.New("no backend endpoint for this view")

var errUnreachable = errors.New("backend unreachable")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "backend returned " + e.Status
	}
	return "backend returned " + e.Status + ": " + e.Body
}

// HealthObserver is told whether the backend was healthy on each completed
// read. A nil error means it answered; a non-nil error is an outage.
type HealthObserver interface {
	ObserveFetch(err error)
}

// Client provides access to the bitbot API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   HealthObserver
}

// ClientConfig holds optional client settings
type ClientConfig struct {
	RequestsPerSecond float64
	Burst             int
	Observer          HealthObserver
}

// NewClient creates a new backend client
func NewClient(baseURL string, timeout time.Duration, cfg ClientConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(limit, burst),
		observer: cfg.Observer,
	}
}

// Fetch issues exactly one read for req and reports the outcome as a
// FetchResult. Errors never escape: they become a Failed result carrying a
// readable reason. Fetch does not retry and does not cache.
//
// The health observer hears about reads that reached a verdict on the
// backend: transport failures and 5xx statuses are outages, anything else
// the backend answered counts as healthy. Reads abandoned because ctx ended
// are not reported.
func (c *Client) Fetch(ctx context.Context, req models.ViewRequest) models.FetchResult {
	start := time.Now()
	rows, err := c.fetchRows(ctx, req)

	if errors.Is(err, ErrUnroutable) {
		return models.FailedResult(err.Error())
	}

	outcome := classify(ctx, err)
	metrics.ObserveFetch(req.Kind.String(), outcome, time.Since(start))

	if c.observer != nil && outcome != metrics.OutcomeCancelled {
		if outcome == metrics.OutcomeOutage {
			c.observer.ObserveFetch(err)
		} else {
			c.observer.ObserveFetch(nil)
		}
	}

	if err != nil {
		if outcome == metrics.OutcomeCancelled {
			logger.Debug("Fetch %s abandoned: %v", req, err)
		} else {
			logger.Warn("Fetch %s failed after %v: %v", req, time.Since(start), err)
		}
		return models.FailedResult(err.Error())
	}

	logger.Debug("Fetched %d rows for %s in %v", len(rows), req, time.Since(start))
	return models.ReadyResult(rows)
}

// classify maps a read error to a metrics outcome.
func classify(ctx context.Context, err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return metrics.OutcomeCancelled
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code >= http.StatusInternalServerError {
			return metrics.OutcomeOutage
		}
		return metrics.OutcomeRejected
	}
	if errors.Is(err, errUnreachable) {
		return metrics.OutcomeOutage
	}
	return metrics.OutcomeRejected
}

// URL returns the backend address for a request.
func (c *Client) URL(req models.ViewRequest) (string, error) {
	if req.Kind == models.NotFound {
		return "", ErrUnroutable
	}
	return c.baseURL + route.Location(req).String(), nil
}

func (c *Client) fetchRows(ctx context.Context, req models.ViewRequest) ([]models.Record, error) {
	u, err := c.URL(req)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request not sent: %w", err)
	}

	resp, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Kind, err)
	}

	rows, err := decodeRows(req.Kind, body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", req.Kind, err)
	}
	return rows, nil
}

// doRequest performs a single GET. Non-2xx statuses are errors.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	return resp, nil
}

// decodeRows parses a JSON array of rows of the given kind. A JSON null is
// an empty result.
func decodeRows(kind models.ViewKind, body []byte) ([]models.Record, error) {
	switch kind {
	case models.BidAsk:
		return decodeAs(body, bidAskWire.record)
	case models.Opportunity:
		return decodeAs(body, opportunityWire.record)
	case models.Arbitrage:
		return decodeAs(body, arbitrageWire.record)
	case models.Trade:
		return decodeAs(body, tradeWire.record)
	default:
		return nil, ErrUnroutable
	}
}

func decodeAs[W any](body []byte, convert func(W) (models.Record, error)) ([]models.Record, error) {
	var wires []W
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, err
	}
	rows := make([]models.Record, 0, len(wires))
	for i, w := range wires {
		r, err := convert(w)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}
