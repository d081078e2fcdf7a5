// Package fr24 provides a client for the FlightRadar24 live zone feed.
package fr24

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultFeedURL is the public zone feed endpoint.
const DefaultFeedURL = "https://data-cloud.flightradar24.com/zones/fcgi/feed.js"

// defaultUserAgent mimics a browser; the feed rejects unknown agents.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client fetches live flight snapshots.
type Client interface {
	// LiveFeed returns every aircraft currently visible within opts.Bounds.
	LiveFeed(ctx context.Context, opts FeedOptions) (*Feed, error)
}

// Downloader fetches a URL body. fetcher.HTTPFetcher satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedOptions filters the live feed.
type FeedOptions struct {
	// Bounds is "north,south,west,east" in decimal degrees. Empty means worldwide.
	Bounds string
	// Limit caps the number of aircraft returned by the server.
	Limit int
}

// Option configures the FR24 client.
type Option func(*httpClient)

// WithBaseURL sets a custom feed URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.feedURL = u
	}
}

// WithDownloader routes requests through d instead of a plain http.Client.
func WithDownloader(d Downloader) Option {
	return func(c *httpClient) {
		c.downloader = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	feedURL    string
	downloader Downloader
	http       *http.Client
}

// NewClient creates a new FR24 feed client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		feedURL: DefaultFeedURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FeedURL builds the feed request URL for opts.
func FeedURL(base string, opts FeedOptions) string {
	q := url.Values{}
	if opts.Bounds != "" {
		q.Set("bounds", opts.Bounds)
	}
	q.Set("faa", "1")
	q.Set("satellite", "1")
	q.Set("mlat", "1")
	q.Set("flarm", "1")
	q.Set("adsb", "1")
	q.Set("gnd", "0")
	q.Set("air", "1")
	q.Set("vehicles", "0")
	q.Set("estimated", "1")
	q.Set("maxage", "14400")
	q.Set("gliders", "0")
	q.Set("stats", "0")
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	return base + "?" + q.Encode()
}

func (c *httpClient) LiveFeed(ctx context.Context, opts FeedOptions) (*Feed, error) {
	body, err := c.open(ctx, FeedURL(c.feedURL, opts))
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "fr24: read feed")
	}
	return ParseFeed(data)
}

func (c *httpClient) open(ctx context.Context, u string) (io.ReadCloser, error) {
	if c.downloader != nil {
		body, err := c.downloader.Download(ctx, u)
		return body, eris.Wrap(err, "fr24: download feed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fr24: create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fr24: feed request")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp.Body, nil
}

// StatusError reports a non-200 response from the feed.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "fr24: unexpected status " + strconv.Itoa(e.Code)
}
