package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/metrics"
	"news-analysis/models"
)

// SentinelDate is the answer the date agent gives when the markup holds no date.
var SentinelDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ResolveDates resolves the publication date of every result and drops those
// whose date is unknown. Order is preserved.
func (a *Acquirer) ResolveDates(ctx context.Context, results []models.ClassificationResult) ([]models.ClassificationResult, error) {
	dated := make([]models.ClassificationResult, 0, len(results))
	for _, r := range results {
		d, err := a.ResolveDate(ctx, r.Article)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			metrics.RecordDrop("date_unknown")
			a.log.Infow("Published date not found, dropping article", "url", r.URL, "error", err)
			continue
		}
		r.PublishedDate = &d
		dated = append(dated, r)
	}

	metrics.RecordStage("dated", len(dated))
	return dated, nil
}

// ResolveDate runs the date fallback chain: the parser's timestamp, then the
// first JSON-LD block's datePublished, then the date agent over the latter
// half of the markup. A sentinel result is ErrDateUnknown.
func (a *Acquirer) ResolveDate(ctx context.Context, article models.Article) (time.Time, error) {
	if article.ParsedAt != nil {
		return checkSentinel(dateOf(*article.ParsedAt))
	}

	raw, err := jsonLDDatePublished(article.HTML)
	if err == nil {
		if t, perr := dateparse.ParseAny(raw); perr == nil {
			return checkSentinel(dateOf(t))
		}
		a.log.Infow("Unparseable datePublished in JSON-LD, asking the date agent", "url", article.URL, "value", raw)
	} else {
		a.log.Infow("No usable JSON-LD date, asking the date agent", "url", article.URL, "reason", err)
	}

	return a.dateFromAgent(ctx, article)
}

func (a *Acquirer) dateFromAgent(ctx context.Context, article models.Article) (time.Time, error) {
	markup := latterHalf(article.HTML)
	if strings.TrimSpace(markup) == "" {
		return time.Time{}, apperrors.Wrap(apperrors.ErrDateUnknown, "no markup")
	}

	ag, err := a.registry.Get(agent.PublishedDate)
	if err != nil {
		return time.Time{}, err
	}

	resp, err := llm.Submit[llm.PublishedDateResponse](ctx, a.dates, ag.Prompt(markup))
	if err != nil {
		return time.Time{}, apperrors.Mark(apperrors.ErrDateUnknown, err, "date agent")
	}

	t, err := dateparse.ParseAny(strings.TrimSpace(resp.PublishedDate))
	if err != nil {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrDateUnknown, "date agent answered %q", resp.PublishedDate)
	}
	return checkSentinel(dateOf(t))
}

func checkSentinel(d time.Time) (time.Time, error) {
	if d.Equal(SentinelDate) {
		return time.Time{}, apperrors.ErrDateUnknown
	}
	return d, nil
}

// dateOf keeps the calendar date of t as written, at UTC midnight.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// latterHalf returns the second half of s, starting on a rune boundary.
func latterHalf(s string) string {
	i := len(s) / 2
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

var (
	errNoJSONLD        = errors.New("no JSON-LD script")
	errNoDatePublished = errors.New("no datePublished in JSON-LD")
	errMalformedJSONLD = errors.New("malformed JSON-LD")
)

// jsonLDDatePublished reads datePublished from the first JSON-LD script of the
// page, either at the top level, inside @graph, or in a top-level array.
func jsonLDDatePublished(markup string) (string, error) {
	script, ok := firstJSONLD(markup)
	if !ok {
		return "", errNoJSONLD
	}

	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(script))

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return "", errMalformedJSONLD
	}

	if d, ok := findDatePublished(doc); ok {
		return d, nil
	}
	return "", errNoDatePublished
}

func findDatePublished(doc any) (string, bool) {
	switch v := doc.(type) {
	case map[string]any:
		if d, ok := v["datePublished"].(string); ok && strings.TrimSpace(d) != "" {
			return d, true
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]any); ok {
					if d, ok := obj["datePublished"].(string); ok && strings.TrimSpace(d) != "" {
						return d, true
					}
				}
			}
		}
	case []any:
		for _, item := range v {
			if d, ok := findDatePublished(item); ok {
				return d, true
			}
		}
	}
	return "", false
}

func firstJSONLD(markup string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" || !hasAttr {
				continue
			}
			if !isJSONLD(z) {
				continue
			}
			if z.Next() != html.TextToken {
				return "", true
			}
			return string(z.Text()), true
		}
	}
}

func isJSONLD(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "type" && strings.EqualFold(strings.TrimSpace(string(val)), "application/ld+json") {
			return true
		}
		if !more {
			return false
		}
	}
}
