// Package downstream holds the gateway's HTTP clients for the users, events
// and posts services.
//
// Calls are made once and never retried. A call that produces no response
// becomes apierr.KindUpstreamUnavailable; a response of any status is handed
// back to the caller, which decides whether to relay it or treat it as fatal.
package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBody bounds how much of a downstream response is read into memory.
const maxBody = 4 << 20

// RequestIDHeader carries the correlation id to backing services.
const RequestIDHeader = "X-Request-Id"

// Response is a fully read downstream response.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Relay wraps the response so apierr.Write passes it through unchanged.
func (r *Response) Relay() *apierr.Relayed {
	return &apierr.Relayed{Status: r.Status, ContentType: r.ContentType, Body: r.Body}
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client is a base client for one backing service.
type Client struct {
	name string
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// New builds a client for the service rooted at baseURL
// (e.g. "http://events:8080/v1/"). A nil httpClient uses http.DefaultClient.
func New(name, baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s endpoint: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s endpoint %q: scheme must be http or https", name, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{name: name, base: u, http: httpClient, log: logger}, nil
}

// Name returns the service name used in logs and metrics.
func (c *Client) Name() string { return c.name }

// Get issues a GET for path relative to the service root.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil, "")
}

// PostForm issues a form-encoded POST.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// DeleteForm issues a DELETE with a form-encoded body.
func (c *Client) DeleteForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// PutJSON issues a PUT with v encoded as JSON.
func (c *Client) PutJSON(ctx context.Context, path string, v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.Do(ctx, http.MethodPut, path, nil, bytes.NewReader(b), "application/json")
}

// Do sends one request bounded by timeouts.Upstream. Only transport failures
// produce an error; every status code is returned in the Response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*Response, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Upstream(), c.log, c.name+" "+method)
	defer cancel()

	ref, err := url.Parse("./" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s path %q: %w", c.name, path, err)
	}
	target := c.base.ResolveReference(ref)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(RequestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordDownstream(c.name, 0, time.Since(start))
		c.log.Warn("downstream call failed",
			zap.String("service", c.name),
			zap.String("method", method),
			zap.String("url", target.String()),
			zap.Error(err))
		return nil, apierr.Upstream(c.name, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	metrics.RecordDownstream(c.name, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, apierr.Upstream(c.name, fmt.Errorf("read body: %w", err))
	}

	c.log.Debug("downstream call",
		zap.String("service", c.name),
		zap.String("method", method),
		zap.String("url", target.String()),
		zap.Int("status", resp.StatusCode))

	return &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: b}, nil
}

// requestID reuses the inbound chi request id when present.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// unexpected turns a non-success response on a read path into a fatal error.
func (c *Client) unexpected(op string, resp *Response) error {
	return apierr.Upstream(c.name, fmt.Errorf("%s: unexpected status %d", op, resp.Status))
}
