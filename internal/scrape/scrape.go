// Package scrape retrieves health advisories from the WHO and MOHFW
// websites.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/cognicore/rhea/internal/logging"
	"github.com/cognicore/rhea/pkg/rhea/provider"
)

// Default page lists.
var (
	WHOURLs = []string{
		"https://www.who.int/emergencies/diseases/novel-coronavirus-2019",
		"https://www.who.int/news-room/fact-sheets",
		"https://www.who.int/health-topics",
	}
	MOHFWURLs = []string{
		"https://www.mohfw.gov.in",
		"https://www.mohfw.gov.in/index.php",
		"https://main.mohfw.gov.in",
	}
)

// DefaultUserAgent is sent with every request; both sites reject bare
// Go clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxBodyBytes = 8 << 20

// Config controls request behavior.
type Config struct {
	UserAgent      string
	Timeout        time.Duration // per request
	Delay          time.Duration // pause between pages
	Retries        int           // extra attempts per page
	InitialBackoff time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		UserAgent:      DefaultUserAgent,
		Timeout:        15 * time.Second,
		Delay:          time.Second,
		Retries:        2,
		InitialBackoff: 500 * time.Millisecond,
	}
}

// Client fetches and parses advisory pages.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, logger: logging.OrNop(logger)}
}

// statusError is a non-2xx response.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.url, e.code)
}

// FetchPage downloads and parses one page, retrying transport errors and
// 5xx responses with exponential backoff.
func (c *Client) FetchPage(ctx context.Context, url string) (*html.Node, error) {
	var doc *html.Node

	op := func() error {
		reqCtx := ctx
		if c.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &statusError{url: url, code: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&statusError{url: url, code: resp.StatusCode})
		}

		parsed, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("parse %s: %w", url, err))
		}
		doc = parsed
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxElapsedTime = 0
	var policy backoff.BackOff = backoff.WithMaxRetries(b, uint64(max(c.cfg.Retries, 0)))
	policy = backoff.WithContext(policy, ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying page", zap.String("url", url), zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return doc, nil
}

// WHO scrapes the WHO pages. Pages that fail are skipped.
func (c *Client) WHO(urls []string) provider.FetchFunc {
	return func(ctx context.Context) ([]provider.Advisory, error) {
		seen := make(map[string]bool)
		var out []provider.Advisory
		var lastErr error

		for i, url := range urls {
			if i > 0 {
				if err := c.pause(ctx); err != nil {
					return out, err
				}
			}
			doc, err := c.FetchPage(ctx, url)
			if err != nil {
				lastErr = err
				c.logger.Debug("skipping page", zap.String("url", url), zap.Error(err))
				continue
			}
			items := ExtractWHO(doc, seen)
			c.logger.Debug("scraped page", zap.String("url", url), zap.Int("count", len(items)))
			out = append(out, items...)
		}

		if len(out) == 0 && lastErr != nil {
			return nil, lastErr
		}
		return out, nil
	}
}

// MOHFW scrapes the first MOHFW page that can be fetched.
func (c *Client) MOHFW(urls []string) provider.FetchFunc {
	return func(ctx context.Context) ([]provider.Advisory, error) {
		var lastErr error
		for i, url := range urls {
			if i > 0 {
				if err := c.pause(ctx); err != nil {
					return nil, err
				}
			}
			doc, err := c.FetchPage(ctx, url)
			if err != nil {
				lastErr = err
				c.logger.Debug("skipping page", zap.String("url", url), zap.Error(err))
				continue
			}
			items := ExtractMOHFW(doc)
			c.logger.Debug("scraped page", zap.String("url", url), zap.Int("count", len(items)))
			return items, nil
		}
		if lastErr == nil {
			lastErr = errors.New("no MOHFW pages configured")
		}
		return nil, lastErr
	}
}

func (c *Client) pause(ctx context.Context) error {
	if c.cfg.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.cfg.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
