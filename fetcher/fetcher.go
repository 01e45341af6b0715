// Package fetcher downloads article pages and extracts their readable content.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"news-analysis/apperrors"
)

const (
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 5 << 20
)

// Page is the parsed form of one downloaded article.
type Page struct {
	Title       string
	Text        string
	HTML        string
	PublishedAt *time.Time
}

// Fetcher is the download-and-parse collaborator of article acquisition.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

var _ Fetcher = (*Readability)(nil)

// Readability fetches pages over HTTP and parses them with go-readability.
type Readability struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Readability fetcher.
type Option func(*Readability)

// WithTimeout sets the per-download timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Readability) {
		if d > 0 {
			r.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every download.
func WithUserAgent(ua string) Option {
	return func(r *Readability) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

func New(opts ...Option) *Readability {
	r := &Readability{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "Mozilla/5.0 (compatible; news-analysis/1.0)",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch downloads rawURL and extracts title, text and publish time.
// Pages without a title or body text are rejected with ErrAcquisition.
func (r *Readability) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "invalid URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "create request: %v", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", apperrors.ErrAcquisition, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "read body of %s: %v", rawURL, err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "parse %s: %v", rawURL, err)
	}

	page := &Page{
		Title:       strings.TrimSpace(article.Title),
		Text:        strings.TrimSpace(article.TextContent),
		HTML:        string(body),
		PublishedAt: article.PublishedTime,
	}

	if page.Title == "" || page.Text == "" {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "no title or text in %s", rawURL)
	}

	return page, nil
}
