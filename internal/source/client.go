package source

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the upstream dataset published by Our World in Data.
const DefaultURL = "https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/vaccinations/vaccinations-by-manufacturer.csv"

// Client downloads the vaccination dataset.
type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
	parse        ParseOptions
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new dataset client.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:       url,
		userAgent: "vaxchart",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the dataset location.
func (c *Client) URL() string { return c.url }

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithParseOptions sets how malformed rows are handled.
func WithParseOptions(p ParseOptions) ClientOption {
	return func(c *Client) {
		c.parse = p
	}
}
