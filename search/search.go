// Package search queries a web search engine for article links restricted to
// one site and a publication date window.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"news-analysis/apperrors"
	"news-analysis/config"
	"news-analysis/logger"
	"news-analysis/metrics"
)

// Provider returns result links for one query. The result may be empty.
type Provider interface {
	Query(ctx context.Context, q Query) ([]Result, error)
}

// Query is one search term restricted to a site and a date range.
type Query struct {
	Terms string
	Site  config.Site
	From  time.Time
	To    time.Time
}

// String renders the engine query, e.g.
// `Energy Storage news New York site:powermag.com/ -inurl:powermag.com/tag/`.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.Terms)
	b.WriteString(" site:")
	b.WriteString(q.Site.Domain)
	for _, ex := range q.Site.Exclude {
		b.WriteString(" -inurl:")
		b.WriteString(ex)
	}
	return b.String()
}

// DateRange renders the window in the engine's sort restriction format.
func (q Query) DateRange() string {
	return fmt.Sprintf("date:r:%s:%s", q.From.Format("20060102"), q.To.Format("20060102"))
}

type Result struct {
	Link  string
	Title string
}

var _ Provider = (*Google)(nil)

// Google queries the Custom Search JSON API.
type Google struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
	log      *logger.Logger
}

// NewGoogle builds a client for the engine in cfg. An empty EngineURL keeps
// the library's default endpoint.
func NewGoogle(ctx context.Context, cfg config.SearchConfig, log *logger.Logger) (*Google, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.EngineURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.EngineURL))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, "create custom search service")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Google{
		svc:      svc,
		engineID: cfg.EngineID,
		timeout:  timeout,
		log:      log.With("component", "search"),
	}, nil
}

func (g *Google) Query(ctx context.Context, q Query) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Cse.List().
		Q(q.String()).
		Cx(g.engineID).
		Sort(q.DateRange()).
		Context(ctx).
		Do()
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, apperrors.Wrapf(apperrors.ErrExternal, "search API status %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, apperrors.Mark(apperrors.ErrExternal, err, "search %q", q.String())
	}

	metrics.SearchRequests.WithLabelValues("success").Inc()

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, Result{Link: item.Link, Title: item.Title})
	}

	g.log.Debugw("Search completed", "query", q.String(), "results", len(results))
	return results, nil
}
