// Package client is a Go client for the StudyHub REST API. The session
// cookie is kept in a cookie jar, so a Client is one logged-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/shaibs3/studyhub/internal/view"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("studyhub: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is replaced
// when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetryAttempts sets how many times idempotent reads are tried.
func WithRetryAttempts(n uint) Option {
	return func(c *Client) {
		c.attempts = n
	}
}

// Client talks to one StudyHub server.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	attempts uint

	mu     sync.Mutex
	userID int64
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: 15 * time.Second},
		attempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Status is the server's view of the current session.
type Status struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	UserID     int64  `json:"userId,omitempty"`
	Username   string `json:"username,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

type createdBody struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m messageBody
		if json.Unmarshal(raw, &m) != nil || m.Message == "" {
			m.Message = strings.TrimSpace(string(raw))
			if m.Message == "" {
				m.Message = http.StatusText(resp.StatusCode)
			}
		}
		return &APIError{Status: resp.StatusCode, Message: m.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// get retries transport failures. Server responses, including errors, are
// returned as is.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return retry.Do(
		func() error { return c.do(ctx, http.MethodGet, path, nil, out) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			return !errors.As(err, &apiErr) && ctx.Err() == nil
		}),
	)
}

func (c *Client) setUser(id int64) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

// currentUser returns the logged-in user's id, asking the server when the
// client has not seen a login yet.
func (c *Client) currentUser(ctx context.Context) (int64, error) {
	c.mu.Lock()
	id := c.userID
	c.mu.Unlock()
	if id != 0 {
		return id, nil
	}
	st, err := c.Status(ctx)
	if err != nil {
		return 0, err
	}
	if !st.IsLoggedIn {
		return 0, &APIError{Status: http.StatusUnauthorized, Message: "Not logged in"}
	}
	return st.UserID, nil
}

// Categorized fetches the catalog and, for a logged-in user, their pinned
// and viewed ids, and buckets the catalog.
func (c *Client) Categorized(ctx context.Context) (view.Catalog, error) {
	resources, err := c.Resources(ctx)
	if err != nil {
		return view.Catalog{}, err
	}
	st, err := c.Status(ctx)
	if err != nil {
		return view.Catalog{}, err
	}
	if !st.IsLoggedIn {
		return view.Categorize(resources, nil, nil), nil
	}
	pinned, err := c.Pinned(ctx)
	if err != nil {
		return view.Catalog{}, err
	}
	viewed, err := c.Viewed(ctx)
	if err != nil {
		return view.Catalog{}, err
	}
	return view.Categorize(resources, view.RefIDs(pinned), view.RefIDs(viewed)), nil
}

// Cookies returns the cookies the jar holds for the server.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, e.g. with a session saved by an earlier process.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.baseURL, cookies)
}
