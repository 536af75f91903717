// Package tmdb provides a client for The Movie Database API.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

const (
	configurationPath = "/3/configuration"
	nowPlayingPath    = "/3/movie/now_playing"
)

// Client is a TMDB API client. It returns raw JSON bodies; decoding is left
// to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
	cache      *expirable.LRU[string, []byte]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets how long configuration responses are cached.
// A zero TTL disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLanguage sets the ISO 639-1 language for localized fields (e.g. "en-US").
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithRegion sets the ISO 3166-1 region used to filter release dates.
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newCache(ttl time.Duration) *expirable.LRU[string, []byte] {
	if ttl <= 0 {
		return nil
	}
	return expirable.NewLRU[string, []byte](8, nil, ttl)
}

// Configuration fetches the API configuration (image base URL and sizes).
// Responses are cached for the configured TTL.
func (c *Client) Configuration(ctx context.Context) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(configurationPath); ok {
			return body, nil
		}
	}

	body, err := c.get(ctx, configurationPath, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(configurationPath, body)
	}
	return body, nil
}

// NowPlaying fetches the first page of movies currently in theatres.
func (c *Client) NowPlaying(ctx context.Context) ([]byte, error) {
	return c.NowPlayingPage(ctx, 1)
}

// NowPlayingPage fetches one page of movies currently in theatres.
func (c *Client) NowPlayingPage(ctx context.Context, page int) ([]byte, error) {
	params := url.Values{}
	if c.region != "" {
		params.Set("region", c.region)
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return c.get(ctx, nowPlayingPath, params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	// Build request
	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Execute
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Handle errors
	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
