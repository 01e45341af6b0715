package pipeline

import (
	"context"
	"time"

	"news-analysis/config"
	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/models"
	"news-analysis/retry"
	"news-analysis/search"
)

// Collector runs every planned query against every allow-listed site and
// merges the results by URL. It pauses for cooldown after every
// requestsBeforeCooldown search requests.
type Collector struct {
	provider               search.Provider
	sites                  []config.Site
	attempts               int
	requestsBeforeCooldown int
	cooldown               time.Duration
	now                    func() time.Time
	sleep                  func(ctx context.Context, d time.Duration) error
	log                    *logger.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithClock replaces the clock used to compute the date window.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.now = now
	}
}

// WithSleep replaces the cooldown wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) CollectorOption {
	return func(c *Collector) {
		c.sleep = sleep
	}
}

func NewCollector(provider search.Provider, sites []config.Site, cfg config.SearchConfig, log *logger.Logger, opts ...CollectorOption) *Collector {
	c := &Collector{
		provider:               provider,
		sites:                  sites,
		attempts:               cfg.Attempts,
		requestsBeforeCooldown: cfg.RequestsBeforeCooloff,
		cooldown:               cfg.Cooldown,
		now:                    time.Now,
		sleep:                  sleepContext,
		log:                    log.With("component", "collector"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns one LinkTag per distinct URL, in first-seen order. A URL
// reached by several queries carries the tags of all of them. A request that
// still fails after its retries is logged and skipped.
func (c *Collector) Collect(ctx context.Context, queries []models.SearchTerm, days int) ([]models.LinkTag, error) {
	to := c.now()
	from := to.AddDate(0, 0, -days)

	var (
		links    []models.LinkTag
		index    = make(map[string]int)
		requests int
		failed   int
	)

	for _, q := range queries {
		for _, site := range c.sites {
			query := search.Query{Terms: q.Term, Site: site, From: from, To: to}

			results, err := retry.Value(ctx, c.attempts, func(ctx context.Context, attempt int) ([]search.Result, error) {
				if c.requestsBeforeCooldown > 0 && requests >= c.requestsBeforeCooldown {
					c.log.Infow("Search request budget reached, cooling down", "requests", requests, "cooldown", c.cooldown)
					if err := c.sleep(ctx, c.cooldown); err != nil {
						return nil, err
					}
					requests = 0
				}
				requests++
				return c.provider.Query(ctx, query)
			}, retry.OnRetry(func(attempt int, err error) {
				c.log.Warnw("Search request failed, retrying", "query", query.String(), "attempt", attempt, "error", err)
			}))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				failed++
				c.log.Errorw("Search request failed", "query", query.String(), "error", err)
				continue
			}

			for _, r := range results {
				if i, ok := index[r.Link]; ok {
					links[i].AddTag(q.Tag)
					continue
				}
				index[r.Link] = len(links)
				links = append(links, models.LinkTag{URL: r.Link, Tags: []string{q.Tag}})
			}
		}
	}

	metrics.RecordStage("collected", len(links))
	c.log.Infow("Links collected", "links", len(links), "failed_requests", failed)
	return links, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
