package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"news-analysis/agent"
	"news-analysis/fetcher"
	"news-analysis/llm"
	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/models"
)

// Acquirer downloads collected links into articles and resolves their
// publication dates.
type Acquirer struct {
	fetcher     fetcher.Fetcher
	dates       llm.Completer
	registry    *agent.Registry
	concurrency int
	log         *logger.Logger
}

// NewAcquirer creates an Acquirer. dates is the completer used as the last
// step of date resolution.
func NewAcquirer(f fetcher.Fetcher, dates llm.Completer, registry *agent.Registry, concurrency int, log *logger.Logger) *Acquirer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Acquirer{
		fetcher:     f,
		dates:       dates,
		registry:    registry,
		concurrency: concurrency,
		log:         log.With("component", "acquirer"),
	}
}

// FetchAll downloads every link with at most concurrency downloads in flight.
// Links that fail to download or parse are logged and dropped. The order of
// the result is not significant.
func (a *Acquirer) FetchAll(ctx context.Context, links []models.LinkTag) []models.Article {
	var (
		mu       sync.Mutex
		articles = make([]models.Article, 0, len(links))
	)

	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for _, link := range links {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			page, err := a.fetcher.Fetch(ctx, link.URL)
			if err != nil {
				metrics.RecordDrop("acquisition")
				a.log.Infow("Dropping article", "url", link.URL, "error", err)
				return nil
			}

			article := models.Article{
				URL:      link.URL,
				Title:    page.Title,
				Text:     page.Text,
				HTML:     page.HTML,
				Tags:     append([]string(nil), link.Tags...),
				ParsedAt: page.PublishedAt,
			}

			mu.Lock()
			articles = append(articles, article)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordStage("fetched", len(articles))
	a.log.Infow("Articles fetched", "links", len(links), "articles", len(articles))
	return articles
}
