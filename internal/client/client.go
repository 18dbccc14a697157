// Package client is a typed HTTP client for the /api/table resource, used
// by the editable table model to talk to the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aanand-mishra/table-api/internal/http/handlers/table"
	"github.com/aanand-mishra/table-api/internal/types"
	"github.com/aanand-mishra/table-api/internal/utils/response"
)

// HTTPError represents a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d: %s", e.StatusCode, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
}

// New creates a Client for the server at baseURL (e.g. http://localhost:8082).
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}

	c := &Client{
		endpoint:   base.JoinPath(table.BasePath),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every row.
func (c *Client) List(ctx context.Context) ([]types.Row, error) {
	var out []types.Row
	if err := c.do(ctx, http.MethodGet, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new row and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, row types.Row) (types.Row, error) {
	row.ID = ""
	var out types.Row
	if err := c.do(ctx, http.MethodPost, nil, row, &out); err != nil {
		return types.Row{}, err
	}
	return out, nil
}

// Update sends newData for the row carrying id and returns the stored row.
func (c *Client) Update(ctx context.Context, id string, newData types.Row) (types.Row, error) {
	var out types.Row
	req := table.UpdateRequest{ID: id, NewData: newData}
	if err := c.do(ctx, http.MethodPut, nil, req, &out); err != nil {
		return types.Row{}, err
	}
	return out, nil
}

// Delete removes the row carrying id. The id travels both as ?id= and in
// the body, as the browser page sends it.
func (c *Client) Delete(ctx context.Context, id string) error {
	query := url.Values{"id": {id}}
	return c.do(ctx, http.MethodDelete, query, table.DeleteRequest{ID: id}, nil)
}

func (c *Client) do(ctx context.Context, method string, query url.Values, in, out any) error {
	target := *c.endpoint
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, target.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return httpErr
	}

	var envelope response.Response
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		httpErr.Message = envelope.Error
		httpErr.Details = envelope.Details
		return httpErr
	}

	httpErr.Message = strings.TrimSpace(string(raw))
	return httpErr
}
