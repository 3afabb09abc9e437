package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultUserAgent identifies the harvester politely to site operators.
	DefaultUserAgent = "eventharvest/1.0 (github.com/eventharvest/eventharvest)"
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	defaultRetryCount    = 2
	defaultRetryWaitTime = 2 * time.Second
)

// Config describes how requests are issued. The zero value is usable;
// empty fields fall back to the package defaults.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	Headers    map[string]string
	RetryCount int
}

// Client wraps a resty client configured from a Config. Safe for
// concurrent use.
type Client struct {
	rc *resty.Client
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = defaultRetryCount
	}

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	for k, v := range cfg.Headers {
		rc.SetHeader(k, v)
	}
	return &Client{rc: rc}
}

// Get fetches a URL and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}

// GetDocument fetches a URL and parses the body as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", url, err)
	}
	return doc, nil
}

// GetJSON fetches a URL and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(out).
		Get(url)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("fetching %s: unexpected status code: %d", url, resp.StatusCode())
	}
	return nil
}
