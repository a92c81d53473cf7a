// Package storeclient is the browsing client's view of the storefront API.
// It shields callers from a cold-starting backend: readiness is polled with
// a bounded probe loop and catalog fetches retry transient failures before
// surfacing an error.
package storeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrRetriesExhausted reports that a fetch ran out of retry attempts. The
// caller decides whether to Reset and try again.
var ErrRetriesExhausted = errors.New("retries exhausted")

const (
	defaultProbeAttempts = 6
	defaultProbeDelay    = 4 * time.Second
	defaultFetchRetries  = 3
	defaultFetchDelay    = 2 * time.Second
)

// SleepFunc waits for d or until ctx is cancelled. It returns false on
// cancellation so loops can stop scheduling further attempts. Tests inject
// a fake to run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) bool

func realSleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Product is the client-side catalog view.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Category    string      `json:"category"`
	Description string      `json:"description,omitempty"`
	PriceCents  int64       `json:"price_cents"`
	Images      []string    `json:"images,omitempty"`
	Sizes       []SizeStock `json:"sizes"`
	Featured    bool        `json:"featured"`
}

type SizeStock struct {
	Size  string `json:"size"`
	Stock int64  `json:"stock"`
}

// Filter narrows a catalog fetch. Price bounds are decimal dollar strings,
// passed through as query params.
type Filter struct {
	Category string
	MinPrice string
	MaxPrice string
	Search   string
}

type Client struct {
	baseURL string
	http    *http.Client
	sleep   SleepFunc

	probeAttempts int
	probeDelay    time.Duration
	fetchRetries  int
	fetchDelay    time.Duration

	mu      sync.Mutex
	retries int
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

func WithProbePolicy(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.probeAttempts = attempts; c.probeDelay = delay }
}

func WithRetryPolicy(retries int, delay time.Duration) Option {
	return func(c *Client) { c.fetchRetries = retries; c.fetchDelay = delay }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: 10 * time.Second},
		sleep:         realSleep,
		probeAttempts: defaultProbeAttempts,
		probeDelay:    defaultProbeDelay,
		fetchRetries:  defaultFetchRetries,
		fetchDelay:    defaultFetchDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WaitReady polls the health endpoint until the backend answers 200 or the
// attempt budget runs out. Exhaustion is not an error: the caller simply
// stays in the not-ready state. Cancelling ctx stops the loop immediately.
func (c *Client) WaitReady(ctx context.Context) bool {
	for i := 0; i < c.probeAttempts; i++ {
		if i > 0 {
			if !c.sleep(ctx, c.probeDelay) {
				return false
			}
		}
		if c.probe(ctx) {
			return true
		}
	}
	return false
}

func (c *Client) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// Backend still sleeping.
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// FetchProducts queries the catalog, retrying transient failures with a
// fixed delay. The retry counter carries across calls and resets on every
// success; once exhausted, calls fail fast until Reset is invoked (the
// manual retry affordance).
func (c *Client) FetchProducts(ctx context.Context, filter Filter) ([]Product, error) {
	for {
		products, err := c.fetchOnce(ctx, filter)
		if err == nil {
			c.mu.Lock()
			c.retries = 0
			c.mu.Unlock()
			return products, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.mu.Lock()
		exhausted := c.retries >= c.fetchRetries
		if !exhausted {
			c.retries++
		}
		c.mu.Unlock()

		if exhausted {
			return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
		}
		if !c.sleep(ctx, c.fetchDelay) {
			return nil, ctx.Err()
		}
	}
}

// Reset re-arms the retry counter after an exhaustion error.
func (c *Client) Reset() {
	c.mu.Lock()
	c.retries = 0
	c.mu.Unlock()
}

func (c *Client) fetchOnce(ctx context.Context, filter Filter) ([]Product, error) {
	params := url.Values{}
	if filter.Category != "" {
		params.Set("category", filter.Category)
	}
	if filter.MinPrice != "" {
		params.Set("minPrice", filter.MinPrice)
	}
	if filter.MaxPrice != "" {
		params.Set("maxPrice", filter.MaxPrice)
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}

	endpoint := c.baseURL + "/api/v1/products"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data []Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		body.Data = []Product{}
	}
	return body.Data, nil
}
