package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// ErrUnexpectedStatus is returned for non-2xx page fetches
var ErrUnexpectedStatus = errors.New("unexpected status")

// FetchHeader marks requests made by the filter itself, so the page handler
// can serve them without touching visitor state
const FetchHeader = "X-Phrase-Filter-Fetch"

// maxBodyBytes caps how much of one page is read
const maxBodyBytes = 10 << 20

// Fetcher retrieves the rendered HTML of one content URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcherConfig configures an HTTPFetcher
type HTTPFetcherConfig struct {
	// Timeout bounds one fetch
	Timeout time.Duration

	// Rate is the number of fetches allowed per second; zero is unlimited
	Rate float64

	// Burst is the limiter burst size
	Burst int

	// CacheSize is the number of pages kept; zero disables the cache
	CacheSize int

	// CacheTTL is how long a cached page stays valid
	CacheTTL time.Duration
}

// DefaultHTTPFetcherConfig returns a default configuration
func DefaultHTTPFetcherConfig() HTTPFetcherConfig {
	return HTTPFetcherConfig{
		Timeout:   10 * time.Second,
		Rate:      0,
		Burst:     1,
		CacheSize: 512,
		CacheTTL:  5 * time.Minute,
	}
}

// HTTPFetcher fetches pages over HTTP with pacing and a page cache
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cache   *expirable.LRU[string, string]
}

// NewHTTPFetcher creates a fetcher from config
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	f := &HTTPFetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
	}
	if cfg.CacheSize > 0 {
		f.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return f
}

// Fetch returns the body of url
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			return body, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(FetchHeader, "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	body := string(data)
	if f.cache != nil {
		f.cache.Add(url, body)
	}
	return body, nil
}

// DirFetcher resolves content URLs against a local site directory
type DirFetcher struct {
	root string
}

// NewDirFetcher creates a fetcher reading from root
func NewDirFetcher(root string) *DirFetcher {
	return &DirFetcher{root: root}
}

// Fetch reads the file named by the URL path, confined to the root
func (f *DirFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := filepath.Join(f.root, filepath.FromSlash(path.Clean("/"+p)))

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	return string(data), nil
}
