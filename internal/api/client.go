// Package api implements the outbound client for the catalog REST backend.
// It is the single point of egress: every request gets the configured base
// URL, a JSON content type unless a multipart payload overrides it, and a
// bearer token when the token source yields one. A 401 from any call fires
// the unauthorized hook exactly once for that call, so session teardown does
// not depend on which caller issued the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// TokenSource yields the bearer token for the current request context, or ""
// when the caller is anonymous.
type TokenSource interface {
	Token(ctx context.Context) string
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	log            *slog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource attaches the session store after construction. The client
// and the session store reference each other, so one side has to be wired
// late.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// SetUnauthorizedHook registers the side effect run on any 401 response.
func (c *Client) SetUnauthorizedHook(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, reader, "application/json", out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	reader, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, reader, "application/json", out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// PostForm and PutForm submit a prepared multipart payload, used by the
// entities that carry a media file.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) error {
	if err := form.Err(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, form.reader(), form.ContentType(), out)
}

func (c *Client) PutForm(ctx context.Context, path string, form *Form, out any) error {
	if err := form.Err(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, form.reader(), form.ContentType(), out)
}

func jsonBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn("backend rejected credentials, dropping session",
			"method", method, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return fmt.Errorf("%s %s: %w", method, path, &StatusError{
			Status:  http.StatusUnauthorized,
			Message: backendMessage(respBody),
		})
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{
			Status:  resp.StatusCode,
			Message: backendMessage(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}

	return nil
}
