package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/fetcher"
	"news-analysis/llm"
	"news-analysis/llm/llmtest"
	"news-analysis/logger"
	"news-analysis/models"
	"news-analysis/search"
)

// fakeSearch answers by query terms; a term mapped to an error fails.
type fakeSearch struct {
	mu      sync.Mutex
	results map[string][]string
	errs    map[string]error
	queries []search.Query
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{results: make(map[string][]string), errs: make(map[string]error)}
}

func (f *fakeSearch) Query(ctx context.Context, q search.Query) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	if err := f.errs[q.Terms]; err != nil {
		return nil, err
	}
	var out []search.Result
	for _, link := range f.results[q.Terms+"|"+q.Site.Domain] {
		out = append(out, search.Result{Link: link})
	}
	return out, nil
}

func (f *fakeSearch) on(terms, site string, links ...string) {
	f.results[terms+"|"+site] = links
}

// fakeFetcher serves pages by URL; unknown URLs fail.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]*fetcher.Page
	inFlight int
	maxSeen  int
	delay    time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]*fetcher.Page)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	page, ok := f.pages[url]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrAcquisition, "no page for %s", url)
	}
	cp := *page
	return &cp, nil
}

func (f *fakeFetcher) add(url, title, text, html string, published *time.Time) {
	f.pages[url] = &fetcher.Page{Title: title, Text: text, HTML: html, PublishedAt: published}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
	return &t
}

func article(url string, score int) models.ClassificationResult {
	return models.ClassificationResult{
		Article: models.Article{URL: url, Title: "Title " + url, Text: "Text of " + url},
		Score:   score,
	}
}

// taskURL extracts the link from a classification task.
func taskURL(task string) string {
	i := strings.Index(task, "link: ")
	if i < 0 {
		return ""
	}
	rest := task[i+len("link: "):]
	if j := strings.Index(rest, ","); j >= 0 {
		return rest[:j]
	}
	return rest
}

// scoreByURL answers classification prompts from a URL to score table.
func scoreByURL(scores map[string]int) llmtest.Handler {
	return func(p agent.Prompt) (any, error) {
		url := taskURL(p.Task)
		score, ok := scores[url]
		if !ok {
			return nil, fmt.Errorf("unexpected article %q", url)
		}
		return llm.ScoreResponse{Score: score}, nil
	}
}

func themes(names ...string) llm.AgentDescriptionsResponse {
	var resp llm.AgentDescriptionsResponse
	for _, n := range names {
		resp.Agents = append(resp.Agents, llm.AgentDescription{Name: n, Description: "Looks at " + n})
	}
	return resp
}

// echoCreator expands "name:X description:Y" into an agent named X.
func echoCreator(p agent.Prompt) (any, error) {
	name := strings.TrimPrefix(strings.SplitN(p.Task, " description:", 2)[0], "name:")
	return llm.AgentSpecResponse{
		Name:     name,
		Role:     "You analyze news for " + name + ".",
		Function: "Your function is to report what the article means for " + name + ".",
	}, nil
}

func testLogger() *logger.Logger {
	return logger.Nop()
}
