package docstore

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// APIPrefix is the sub-path every store route lives under.
	APIPrefix = "/api/store"

	// DefaultPollInterval is the refresh period of OnSnapshot listeners.
	DefaultPollInterval = 30 * time.Second
)

// Client talks to the store service. It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenSource
	log          *zap.Logger
	pollInterval time.Duration
	newTicker    TickerFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPollInterval sets the refresh period of OnSnapshot listeners.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithTickerFunc replaces the ticker used by listeners.
func WithTickerFunc(fn TickerFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.newTicker = fn
		}
	}
}

// NewClient creates a client for the service at baseURL. See NormalizeBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      NormalizeBaseURL(baseURL),
		httpClient:   http.DefaultClient,
		log:          zap.NewNop(),
		pollInterval: DefaultPollInterval,
		newTicker:    NewTimeTicker,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the normalized root of the store routes.
func (c *Client) BaseURL() string { return c.baseURL }

// NormalizeBaseURL strips surrounding space and trailing slashes and makes
// sure the URL ends with APIPrefix:
//
//	http://host            -> http://host/api/store
//	http://host/           -> http://host/api/store
//	http://host/api/store/ -> http://host/api/store
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasSuffix(u, APIPrefix) {
		u += APIPrefix
	}
	return u
}
