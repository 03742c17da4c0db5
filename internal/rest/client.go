// Package rest implements the authenticated JSON-over-HTTPS client shared by
// every backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-hclog"
)

// Client performs single request/response exchanges against one host and
// base path. It holds no mutable state, so concurrent calls are independent.
type Client struct {
	host     string
	basePath string
	creds    Credentials
	http     *http.Client
	log      hclog.Logger
	message  MessageFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l hclog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMessage sets how the error message is pulled out of a failed response.
func WithMessage(fn MessageFunc) Option {
	return func(c *Client) {
		c.message = fn
	}
}

// New creates a client for https://host/basePath. The http.Client has no
// timeout; requests end when the transport does.
func New(host, basePath string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		host:     host,
		basePath: basePath,
		creds:    creds,
		http:     &http.Client{},
		log:      hclog.NewNullLogger(),
		message:  Fields("message"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the host the client talks to.
func (c *Client) Host() string {
	return c.host
}

// Do sends one request and buffers the whole response.
//
// On a 2xx status it returns the parsed JSON body, an empty map for an empty
// body, or the raw text when the body is not JSON. Any other status yields an
// *Error. Transport failures are returned as the HTTP client reported them.
func (c *Client) Do(ctx context.Context, method, path string, body any) (any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, "https://"+c.host+c.basePath+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if err := c.creds.Attach(req); err != nil {
			return nil, err
		}
	}

	c.log.Debug("request", "method", method, "host", c.host, "path", c.basePath+path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("response", "method", method, "path", c.basePath+path, "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.newError(resp.StatusCode, data)
	}
	return parseBody(data), nil
}

// Get is shorthand for Do with GET and no body.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post is shorthand for Do with POST.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put is shorthand for Do with PUT.
func (c *Client) Put(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Patch is shorthand for Do with PATCH.
func (c *Client) Patch(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete is shorthand for Do with DELETE and no body.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Into sends a request and decodes a successful response into out.
func (c *Client) Into(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return Decode(raw, out)
}

func (c *Client) newError(status int, data []byte) *Error {
	var msg string
	var parsed any
	if c.message != nil && json.Unmarshal(data, &parsed) == nil {
		msg = c.message(parsed)
	}
	if msg == "" {
		msg = string(data)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{StatusCode: status, Message: msg, Body: data}
}

func parseBody(data []byte) any {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
