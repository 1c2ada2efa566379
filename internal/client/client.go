// Package client is the daily-logger API client. It keeps a session alive by renewing the
// access cookie once per rejected request, with at most one renewal in flight per Client.
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

	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
	refreshPath    = "/api/auth/refresh"
)

// ErrSessionExpired is returned to every caller waiting on a failed renewal.
var ErrSessionExpired = errors.New("session expired")

// Request describes one API call. It is rebuilt for every attempt so the body can be resent.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// NoRenew skips session renewal on 401 (sign-in, sign-up and the renewal call itself).
	NoRenew bool
}

// Options configures New. Zero values pick in-memory defaults.
type Options struct {
	HTTPClient *http.Client
	Store      SessionStore
	Navigator  Navigator
	Log        *zap.Logger
}

// Client sends API requests with cookie auth.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      SessionStore
	nav        Navigator
	log        *zap.Logger

	mu       sync.Mutex
	renewing bool
	// pending releases queued callers in arrival order.
	pending  []func(error)
}

// New returns a Client for baseURL. A cookie jar is attached when the HTTP client has none.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	c := &Client{baseURL: u, httpClient: hc, store: opts.Store, nav: opts.Navigator, log: opts.Log}
	if c.store == nil {
		c.store = &MemoryStore{}
	}
	if c.nav == nil {
		c.nav = nopNavigator{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() *url.URL { return c.baseURL }

// Cookies returns the cookies the jar would send to the API.
func (c *Client) Cookies() []*http.Cookie { return c.httpClient.Jar.Cookies(c.baseURL) }

// SetCookies loads cookies for the API into the jar.
func (c *Client) SetCookies(cookies []*http.Cookie) { c.httpClient.Jar.SetCookies(c.baseURL, cookies) }

// Session returns the client-side session store.
func (c *Client) Session() SessionStore { return c.store }

// Do sends req. On a 401 it renews the session once and retries; a second 401 is returned
// as is. The error is non-nil only for transport failures or a failed renewal.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	res, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusUnauthorized || req.NoRenew {
		return res, nil
	}
	if err := c.renew(ctx); err != nil {
		return nil, err
	}
	return c.send(ctx, req)
}

// renew refreshes the session, or waits for the renewal already in flight.
func (c *Client) renew(ctx context.Context) error {
	c.mu.Lock()
	if c.renewing {
		wait := make(chan error, 1)
		c.pending = append(c.pending, func(err error) { wait <- err })
		c.mu.Unlock()
		select {
		case err := <-wait:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.renewing = true
	c.mu.Unlock()

	// The renewal outlives a cancelled leader; queued callers depend on its outcome.
	err := c.refresh(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.renewing = false
	waiters := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, release := range waiters {
		release(err)
	}
	if err != nil {
		c.expire()
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	res, err := c.send(ctx, Request{Method: http.MethodPost, Path: refreshPath, NoRenew: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	if res.Outcome != OK {
		return fmt.Errorf("%w: %s", ErrSessionExpired, res.Message)
	}
	c.log.Debug("session renewed")
	return nil
}

// expire signs the client out after a failed renewal.
func (c *Client) expire() {
	c.store.Clear()
	if onAuthScreen(c.nav.Path()) {
		return
	}
	c.log.Info("session expired; redirecting to sign-in")
	c.nav.Notify(SessionExpiredMessage)
	c.nav.Navigate(SignInPath)
}

func (c *Client) send(ctx context.Context, req Request) (*Result, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return newResult(resp.StatusCode, data), nil
}
