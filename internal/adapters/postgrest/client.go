// Package postgrest implements the table store port against a
// PostgREST-compatible endpoint such as Supabase's /rest/v1.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// Client is a ports.TableStore over HTTP. Requests carry the anon key as
// apikey and the caller's access token (or the anon key) as bearer.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *logger.Logger
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL, anonKey string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithComponent("postgrest"),
	}
}

// apiError is the error body PostgREST returns.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (c *Client) SelectAll(ctx context.Context, table string, order ports.Order) ([]ports.Row, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", orderParam(order))
	return c.do(ctx, "select", table, http.MethodGet, q, nil)
}

func (c *Client) SelectEq(ctx context.Context, table, column string, value any, order ports.Order) ([]ports.Row, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set(column, "eq."+formatValue(value))
	q.Set("order", orderParam(order))
	return c.do(ctx, "select", table, http.MethodGet, q, nil)
}

func (c *Client) Insert(ctx context.Context, table string, row ports.Row) (ports.Row, error) {
	q := url.Values{}
	q.Set("select", "*")
	rows, err := c.do(ctx, "insert", table, http.MethodPost, q, row)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (c *Client) UpdateByID(ctx context.Context, table string, id int64, patch ports.Row) (ports.Row, error) {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("select", "*")
	rows, err := c.do(ctx, "update", table, http.MethodPatch, q, patch)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (c *Client) DeleteByID(ctx context.Context, table string, id int64) error {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	_, err := c.do(ctx, "delete", table, http.MethodDelete, q, nil)
	return err
}

func (c *Client) do(ctx context.Context, op, table, method string, query url.Values, body ports.Row) ([]ports.Row, error) {
	start := time.Now()
	rows, err := c.roundTrip(ctx, table, method, query, body)
	c.logger.LogStoreCall(op, table, float64(time.Since(start).Nanoseconds())/1000000, err)
	if err != nil {
		return nil, &entities.StoreError{Op: op, Err: err}
	}
	return rows, nil
}

func (c *Client) roundTrip(ctx context.Context, table, method string, query url.Values, body ports.Row) ([]ports.Row, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(table), query.Encode())

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	bearer := c.anonKey
	if token, ok := ports.AccessToken(ctx); ok {
		bearer = token
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &apiError{}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, apiErr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return []ports.Row{}, nil
	}

	var rows []ports.Row
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if rows == nil {
		rows = []ports.Row{}
	}
	return rows, nil
}

func orderParam(order ports.Order) string {
	if order.Ascending {
		return order.Column + ".asc"
	}
	return order.Column + ".desc"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
