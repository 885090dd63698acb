// Package fetch extracts the readable text of a web page.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/TobiSchelling/repurposer/internal/cache"
	"github.com/TobiSchelling/repurposer/internal/content"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Repurposer/1.0"

	// maxBody caps how much of a page is read.
	maxBody = 10 << 20
)

// StatusError is returned when the page responds with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("URL returned status %d %s", e.Code, http.StatusText(e.Code))
}

// Fetcher fetches pages over HTTP and extracts their text with readability.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cache     cache.Cache
	log       *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache stores extracted pages in c keyed by URL.
func WithCache(c cache.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates a fetcher with the given request timeout.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads rawURL and returns its title and whitespace-collapsed text.
// Only http and https URLs are accepted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*content.Fetched, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, content.Invalid("URL must start with http:// or https://")
	}

	if f.cache != nil {
		if data, ok := f.cache.Get(ctx, rawURL); ok {
			var cached content.Fetched
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("extracting content: %w", err)
	}

	text := collapse(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("no text content found at URL")
	}

	fetched := &content.Fetched{
		Title:     collapse(article.Title),
		Text:      text,
		WordCount: content.WordCount(text),
	}
	f.log.Debug("extracted page", zap.String("url", rawURL), zap.Int("words", fetched.WordCount))

	if f.cache != nil {
		if data, err := json.Marshal(fetched); err == nil {
			f.cache.Set(ctx, rawURL, data)
		}
	}
	return fetched, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
