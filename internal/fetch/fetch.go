// Package fetch is the single HTTP path of the scraper: one paced,
// charset-aware, robots-respecting client shared by listing and document
// requests.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const maxHops = 15

type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	robots    *robotstxt.Group
	log       *logrus.Logger
}

// NewClient builds a paced client. delay is the minimum gap between any two
// requests; zero disables pacing.
func NewClient(userAgent string, timeout, delay time.Duration, log *logrus.Logger) *Client {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxHops {
					return fmt.Errorf("stopped after %d redirects", maxHops)
				}
				return nil
			},
		},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
		log:       log,
	}
}

// LoadRobots fetches and applies the robots.txt of the base origin. Any
// failure is logged and treated as allow-all.
func (c *Client) LoadRobots(ctx context.Context, baseURL string) {
	robotsURL := strings.TrimRight(baseURL, "/") + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnf("could not load robots.txt (ignoring): %v", err)
		return
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.log.Warnf("could not parse robots.txt (ignoring): %v", err)
		return
	}
	c.robots = data.FindGroup(c.userAgent)
}

// Allowed consults the loaded robots.txt group; with none loaded every URL
// is allowed.
func (c *Client) Allowed(rawURL string) bool {
	if c.robots == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return c.robots.Test(u.Path)
}

// Get fetches one page and parses it. It blocks on the pacing limiter
// first, so the configured delay applies to every request made through the
// client. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if !c.Allowed(rawURL) {
		return nil, fmt.Errorf("%s is disallowed by robots.txt", rawURL)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		body = resp.Body
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// Check probes a URL for reachability without parsing the body. Used to
// validate the seed URL before any state is touched.
func (c *Client) Check(ctx context.Context, rawURL string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("url is not reachable: %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("url is not reachable: %s: HTTP %d", rawURL, resp.StatusCode)
	}
	return nil
}
