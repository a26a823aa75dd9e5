// Package client talks to a scalelist HTTP server.
//
//	c := client.New("http://localhost:8080")
//	res, err := c.Evaluate(ctx, inputs, false)
//
// Network failures and 5xx responses are retried with exponential backoff.
// Error responses come back as coded errors from the errors package, so
// callers can use errors.Is/GetCode exactly as with local evaluation.
// Missing nodes also match store.ErrNotFound and unknown compute attributes
// match node.ErrUnknownAttribute.
package client

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/scalelist/pkg/api"
	"github.com/matzehuels/scalelist/pkg/cache"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/store"
)

// Default retry settings. They match [cache.RetryWithBackoff].
const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
	DefaultTimeout  = 30 * time.Second
)

// Client is an HTTP client for the scalelist API.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// Attempts and Backoff override the retry schedule for transient
	// failures. Zero values use the defaults.
	Attempts int
	Backoff  time.Duration
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	return call[api.HealthResponse](ctx, c, http.MethodGet, "/healthz", nil)
}

// Schema fetches the node's attribute table.
func (c *Client) Schema(ctx context.Context) (*api.SchemaInfo, error) {
	return call[api.SchemaInfo](ctx, c, http.MethodGet, "/v1/schema", nil)
}

// Evaluate evaluates in on the server. Refresh bypasses the server's result
// cache.
func (c *Client) Evaluate(ctx context.Context, in node.Inputs, refresh bool) (*api.EvaluateResponse, error) {
	body, err := encode(in)
	if err != nil {
		return nil, err
	}
	path := "/v1/evaluate"
	if refresh {
		path += "?refresh=true"
	}
	return call[api.EvaluateResponse](ctx, c, http.MethodPost, path, body)
}

// Compute sends a compute request for attr.
func (c *Client) Compute(ctx context.Context, in node.Inputs, attr string) (*api.ComputeResponse, error) {
	body, err := encode(in)
	if err != nil {
		return nil, err
	}
	return call[api.ComputeResponse](ctx, c, http.MethodPost, "/v1/compute/"+url.PathEscape(attr), body)
}

// PutNode stores in under name.
func (c *Client) PutNode(ctx context.Context, name string, in node.Inputs) (*store.Snapshot, error) {
	body, err := encode(in)
	if err != nil {
		return nil, err
	}
	return call[store.Snapshot](ctx, c, http.MethodPut, nodePath(name), body)
}

// GetNode fetches the snapshot called name.
func (c *Client) GetNode(ctx context.Context, name string) (*store.Snapshot, error) {
	return call[store.Snapshot](ctx, c, http.MethodGet, nodePath(name), nil)
}

// ListNodes lists stored snapshots.
func (c *Client) ListNodes(ctx context.Context) ([]api.NodeSummary, error) {
	var out []api.NodeSummary
	if err := c.do(ctx, http.MethodGet, "/v1/nodes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteNode removes the snapshot called name.
func (c *Client) DeleteNode(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, nodePath(name), nil, nil)
}

// EvaluateNode evaluates a stored snapshot on the server.
func (c *Client) EvaluateNode(ctx context.Context, name string) (*api.EvaluateResponse, error) {
	return call[api.EvaluateResponse](ctx, c, http.MethodPost, nodePath(name)+"/evaluate", nil)
}

func call[T any](ctx context.Context, c *Client, method, path string, body []byte) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func nodePath(name string) string {
	return "/v1/nodes/" + url.PathEscape(name)
}

func encode(in node.Inputs) ([]byte, error) {
	var buf bytes.Buffer
	if err := nodeio.WriteNode(&buf, nodeio.FormatJSON, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// do sends one request, retrying transient failures, and decodes a 2xx body
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	return c.retry(ctx, func() error {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "build request")
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return cache.Retryable(errs.Wrap(errs.ErrCodeNetwork, fmt.Errorf("%w: %v", cache.ErrNetwork, err), "%s %s", method, path))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return responseError(resp)
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s %s response", method, path)
		}
		return nil
	})
}

func (c *Client) retry(ctx context.Context, fn func() error) error {
	if c.Attempts == 0 && c.Backoff == 0 {
		return cache.RetryWithBackoff(ctx, fn)
	}
	return cache.Retry(ctx, cmp.Or(c.Attempts, DefaultAttempts), cmp.Or(c.Backoff, DefaultBackoff), fn)
}

func responseError(resp *http.Response) error {
	var e api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &e); err != nil || e.Code == "" {
		e = api.ErrorResponse{Code: string(errs.ErrCodeInternal), Message: strings.TrimSpace(string(data))}
		if e.Message == "" {
			e.Message = resp.Status
		}
	}

	code := errs.Code(e.Code)
	switch {
	case resp.StatusCode >= 500:
		return cache.Retryable(errs.Wrap(code, cache.ErrNetwork, "%s", e.Message))
	case code == errs.ErrCodeNodeNotFound:
		return errs.Wrap(code, store.ErrNotFound, "%s", e.Message)
	case code == errs.ErrCodeUnknownAttribute:
		return errs.Wrap(code, node.ErrUnknownAttribute, "%s", e.Message)
	default:
		return errs.New(code, "%s", e.Message)
	}
}
