// Package dify implements the DifyClient port over the Dify REST API.
package dify

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

	"github.com/google/go-querystring/query"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
	"github.com/ericfisherdev/difystudio/internal/metrics"
)

// maxResponseBytes caps how much of an upstream response body is read.
const maxResponseBytes = 16 << 20

// Compile-time interface satisfaction check.
var _ driven.DifyClient = (*Client)(nil)

// Client implements the driven.DifyClient port. It holds no credentials;
// every call authenticates with the UpstreamCredentials it is given, so a
// single Client is safe to share across concurrent requests.
type Client struct {
	http    *http.Client
	metrics *metrics.UpstreamMetrics
}

// NewClient creates a Client whose calls time out after timeout. m may be nil.
func NewClient(timeout time.Duration, m *metrics.UpstreamMetrics) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server client.
func NewClientWithHTTPClient(httpClient *http.Client, m *metrics.UpstreamMetrics) *Client {
	return &Client{
		http:    httpClient,
		metrics: m,
	}
}

// request describes one upstream call.
type request struct {
	operation   string
	scope       model.KeyScope
	method      string
	path        string
	query       any
	body        io.Reader
	contentType string
}

// jsonRequest builds a request whose body is raw JSON.
func jsonRequest(operation string, scope model.KeyScope, method, path string, body json.RawMessage) request {
	req := request{operation: operation, scope: scope, method: method, path: path}
	if body != nil {
		req.body = bytes.NewReader(body)
		req.contentType = "application/json"
	}
	return req
}

// do performs a single attempt of req. Non-2xx statuses become
// *driven.UpstreamError; transport failures wrap driven.ErrUpstreamUnavailable.
// An empty 2xx body is returned as "{}".
func (c *Client) do(ctx context.Context, creds model.UpstreamCredentials, req request) (json.RawMessage, error) {
	if closer, ok := req.body.(io.Closer); ok {
		// Streamed bodies must be released even when the request never starts.
		defer closer.Close()
	}

	start := time.Now()
	outcome := metrics.OutcomeSuccess
	defer func() {
		c.metrics.Observe(req.operation, outcome, time.Since(start).Seconds())
	}()

	target, err := buildURL(creds.BaseURL, req.path, req.query)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return nil, fmt.Errorf("build %s request: %w", req.operation, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if key := creds.Key(req.scope); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return nil, fmt.Errorf("%s: %w: %w", req.operation, driven.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome = metrics.OutcomeTransport
		return nil, fmt.Errorf("%s: read response: %w: %w", req.operation, driven.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = metrics.OutcomeHTTPError
		return nil, &driven.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(data) {
		outcome = metrics.OutcomeHTTPError
		return nil, fmt.Errorf("%s: response is not valid JSON", req.operation)
	}

	return json.RawMessage(data), nil
}

// buildURL joins baseURL and path and appends the encoded query options.
func buildURL(baseURL, path string, opts any) (string, error) {
	if baseURL == "" {
		return "", errors.New("dify base url is empty")
	}

	target := strings.TrimRight(baseURL, "/") + path
	if opts == nil {
		return target, nil
	}

	values, err := query.Values(opts)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target, nil
}
