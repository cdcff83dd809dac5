package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rickgao/vaxchart/internal/metrics"
	"github.com/rickgao/vaxchart/internal/model"
)

// FetchError represents a non-2xx response from the dataset host.
type FetchError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dataset fetch error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *FetchError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Fetch downloads and parses the dataset.
func (c *Client) Fetch(ctx context.Context) (*ParseResult, error) {
	start := time.Now()
	metrics.FetchesTotal.Inc()

	body, err := c.doWithRetry(ctx)
	if err != nil {
		metrics.FetchFailuresTotal.Inc()
		return nil, err
	}
	metrics.FetchDurationSeconds.Observe(time.Since(start).Seconds())

	res, err := Parse(bytes.NewReader(body), c.parse)
	if err != nil {
		metrics.FetchFailuresTotal.Inc()
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	if res.Skipped > 0 {
		c.logger.Warn("skipped malformed rows",
			"skipped", res.Skipped,
			"first_error", res.FirstError,
		)
	}
	metrics.RowsSkippedTotal.Add(float64(res.Skipped))

	c.logger.Debug("dataset fetched",
		"rows", len(res.Records),
		"bytes", len(body),
		"duration", time.Since(start),
	)

	return res, nil
}

// FetchRecords is Fetch without the parse statistics.
func (c *Client) FetchRecords(ctx context.Context) ([]model.Record, error) {
	res, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// doRequest performs a single GET of the dataset.
func (c *Client) doRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/csv")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs the request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			wait := backoff
			if backoff > 0 {
				wait = backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			}
			c.logger.Debug("retrying dataset fetch",
				"attempt", attempt,
				"backoff", wait,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}

		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && !fetchErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
