package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/parser"
	"github.com/claude/wodcoach/internal/strategy"
	"github.com/google/uuid"
)

// HTTPClient implements Backend by calling the WODCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration // first backoff; doubles per attempt
}

const maxAttempts = 3

// Compile-time check: HTTPClient satisfies Backend.
var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: time.Second,
	}
}

// statusError is a non-2xx API response.
type statusError struct {
	path   string
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, bytes.TrimSpace(e.body))
}

// do sends a request and returns the response body. Transport errors and
// 5xx responses are retried up to maxAttempts times with exponential backoff.
func (c *HTTPClient) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay << uint(attempt-1)):
			}
		}

		data, err := c.once(ctx, method, path, payload)
		var se *statusError
		if err == nil || (errors.As(err, &se) && se.status < http.StatusInternalServerError) {
			return data, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *HTTPClient) once(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return data, &statusError{path: path, status: resp.StatusCode, body: data}
	}
	return data, nil
}

func (c *HTTPClient) Parse(ctx context.Context, text string) (parser.Result, error) {
	var res parser.Result
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/parse", map[string]string{"text": text})
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("httpclient: decode parse result: %w", err)
	}
	return res, nil
}

func (c *HTTPClient) Strategy(ctx context.Context, athleteID uuid.UUID, text string) (*coach.Report, error) {
	path := "/api/v1/athletes/" + athleteID.String() + "/strategy"
	body, err := c.do(ctx, http.MethodPost, path, map[string]string{"text": text})
	if err != nil {
		var se *statusError
		if !errors.As(err, &se) {
			return nil, err
		}
		switch se.status {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", coach.ErrAthleteNotFound, athleteID)
		case http.StatusUnprocessableEntity:
			var rep coach.Report
			if jerr := json.Unmarshal(se.body, &rep); jerr != nil {
				return nil, fmt.Errorf("httpclient: decode report: %w", jerr)
			}
			return &rep, strategy.ErrInvalidWorkout
		}
		return nil, err
	}

	var rep coach.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("httpclient: decode report: %w", err)
	}
	return &rep, nil
}

func (c *HTTPClient) Movements(ctx context.Context) ([]models.Movement, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/movements", nil)
	if err != nil {
		return nil, err
	}
	var movements []models.Movement
	if err := json.Unmarshal(body, &movements); err != nil {
		return nil, fmt.Errorf("httpclient: decode movements: %w", err)
	}
	return movements, nil
}

func (c *HTTPClient) Percentile(ctx context.Context, code string, value float64, gender, experience string) (*coach.PercentileResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/percentile", map[string]any{
		"benchmark_code": code,
		"value":          value,
		"gender":         gender,
		"experience":     experience,
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			if bytes.Contains(se.body, []byte(coach.ErrNoPercentileTable.Error())) {
				return nil, fmt.Errorf("%w: %s", coach.ErrNoPercentileTable, code)
			}
			return nil, fmt.Errorf("%w: %s", coach.ErrUnknownBenchmark, code)
		}
		return nil, err
	}
	var res coach.PercentileResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decode percentile: %w", err)
	}
	return &res, nil
}
