package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/labportal/internal/logging"
)

// Client issues JSON requests against one backend base URL through a
// Handler pipeline.
type Client struct {
	base    *url.URL
	handler Handler
	logger  logging.Logger
}

// New returns a Client for baseURL that sends every request through h.
func New(baseURL string, h Handler, logger logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{base: u, handler: h, logger: logger}, nil
}

// BaseURL returns the configured base.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) resolve(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

// Do sends a request with an optional JSON body. The caller must close the
// response body.
func (c *Client) Do(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, &TransportError{Kind: KindClient, Message: "client error: " + err.Error(), Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, &TransportError{Kind: KindClient, Message: "client error: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug(ctx, "http request", "method", method, "url", req.URL.String())
	return c.handler(req)
}

// Call performs a request and returns the Data of the envelope it answers
// with. An envelope with code ERROR is reported as a server TransportError.
func Call[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var zero T

	resp, err := c.Do(ctx, method, path, in)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var env Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, &TransportError{Status: resp.StatusCode, Kind: KindDecode, Message: MsgDecode, Err: err}
	}
	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("server error: %d", resp.StatusCode)
		}
		return zero, &TransportError{Status: resp.StatusCode, Kind: KindServer, Message: msg}
	}
	return env.Data, nil
}
