// Package sheets is a minimal client for the Google Sheets values API,
// covering the range reads, appends, updates and row deletions the
// repository layer needs.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/formshift/formshift/internal/metrics"
)

// DefaultBaseURL is the production Sheets API endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com"

// Scope is the OAuth scope required for read/write spreadsheet access.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

const maxRetryElapsed = 30 * time.Second

// TokenSource supplies bearer tokens for API requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to a single spreadsheet. All values are read with the
// formatted render option, so cells always arrive as strings.
type Client struct {
	baseURL       string
	spreadsheetID string
	tokens        TokenSource
	httpClient    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the given spreadsheet.
func NewClient(spreadsheetID string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		spreadsheetID: spreadsheetID,
		tokens:        tokens,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values,omitempty"`
}

// Get reads a range, e.g. "history!A:I". Empty trailing cells are absent
// from the returned rows, so callers must guard row lengths.
func (c *Client) Get(ctx context.Context, rng string) ([][]string, error) {
	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s", c.spreadsheetID, url.PathEscape(rng))

	var vr valueRange
	if err := c.do(ctx, "get", http.MethodGet, path, nil, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// Append adds rows after the last row of the given range's table.
func (c *Client) Append(ctx context.Context, rng string, rows [][]string) error {
	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		c.spreadsheetID, url.PathEscape(rng))
	return c.do(ctx, "append", http.MethodPost, path, valueRange{Values: rows}, nil)
}

// Update overwrites the given range with rows.
func (c *Client) Update(ctx context.Context, rng string, rows [][]string) error {
	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.spreadsheetID, url.PathEscape(rng))
	return c.do(ctx, "update", http.MethodPut, path, valueRange{Values: rows}, nil)
}

// DeleteRows removes rows [start, end) of the named sheet, zero-indexed
// including the header row.
func (c *Client) DeleteRows(ctx context.Context, sheetName string, start, end int) error {
	sheetID, err := c.sheetID(ctx, sheetName)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"requests": []map[string]interface{}{{
			"deleteDimension": map[string]interface{}{
				"range": map[string]interface{}{
					"sheetId":    sheetID,
					"dimension":  "ROWS",
					"startIndex": start,
					"endIndex":   end,
				},
			},
		}},
	}
	path := fmt.Sprintf("/v4/spreadsheets/%s:batchUpdate", c.spreadsheetID)
	return c.do(ctx, "batch_update", http.MethodPost, path, body, nil)
}

func (c *Client) sheetID(ctx context.Context, name string) (int64, error) {
	path := fmt.Sprintf("/v4/spreadsheets/%s?fields=sheets.properties", c.spreadsheetID)

	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := c.do(ctx, "metadata", http.MethodGet, path, nil, &meta); err != nil {
		return 0, err
	}
	for _, s := range meta.Sheets {
		if s.Properties.Title == name {
			return s.Properties.SheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", name)
}

// do performs one API call with retries on transient failures. Retries
// are bounded so a dead upstream cannot stall request handlers.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxRetryElapsed)), ctx)

	operation := func() error {
		return c.doOnce(ctx, op, method, path, payload, out)
	}

	return backoff.Retry(operation, policy)
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, payload []byte, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to obtain access token: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SheetRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SheetRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		metrics.SheetRequestsTotal.WithLabelValues(op, "retry").Inc()
		return fmt.Errorf("sheets API returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		metrics.SheetRequestsTotal.WithLabelValues(op, "error").Inc()
		return backoff.Permanent(fmt.Errorf("sheets API returned %d: %s",
			resp.StatusCode, truncate(string(data), 200)))
	}

	metrics.SheetRequestsTotal.WithLabelValues(op, "ok").Inc()

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
