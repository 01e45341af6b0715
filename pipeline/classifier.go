package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/models"
)

// Classifier scores articles against the planned question set.
type Classifier struct {
	completer llm.Completer
	registry  *agent.Registry
	log       *logger.Logger
}

func NewClassifier(completer llm.Completer, registry *agent.Registry, log *logger.Logger) *Classifier {
	return &Classifier{
		completer: completer,
		registry:  registry,
		log:       log.With("component", "classifier"),
	}
}

// Classify scores every article, one completion per article. An article whose
// classification fails is logged and skipped; the rest keep input order.
func (c *Classifier) Classify(ctx context.Context, subject string, articles []models.Article, plan models.QuestionsAndThreshold) ([]models.ClassificationResult, error) {
	ag, err := c.registry.Render(agent.Classification, subject)
	if err != nil {
		return nil, err
	}

	results := make([]models.ClassificationResult, 0, len(articles))
	for _, article := range articles {
		score, err := c.score(ctx, ag, article, plan.Questions)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			metrics.RecordDrop("classification")
			c.log.Errorw("Classification failed, skipping article", "url", article.URL, "error", err)
			continue
		}
		results = append(results, models.ClassificationResult{Article: article, Score: score})
	}

	metrics.RecordStage("classified", len(results))
	return results, nil
}

func (c *Classifier) score(ctx context.Context, ag agent.Agent, article models.Article, questions []string) (int, error) {
	resp, err := llm.Submit[llm.ScoreResponse](ctx, c.completer, ag.Prompt(ClassificationTask(article, questions)))
	if err != nil {
		return 0, apperrors.Mark(apperrors.ErrClassification, err, "classify %s", article.URL)
	}
	if resp.Score > len(questions) {
		return 0, apperrors.Mark(apperrors.ErrClassification, apperrors.ErrMalformedResponse,
			"classify %s: score %d exceeds %d questions", article.URL, resp.Score, len(questions))
	}
	return resp.Score, nil
}

// ClassificationTask renders the numbered question list followed by the article.
func ClassificationTask(article models.Article, questions []string) string {
	var b strings.Builder
	b.WriteString("questions:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	fmt.Fprintf(&b, "link: %s, title: %s, text: %s", article.URL, article.Title, article.Text)
	return b.String()
}

// Filter keeps results scoring at least threshold, sorted by score
// descending. Equal scores keep their input order. The input is not modified.
func Filter(results []models.ClassificationResult, threshold int) []models.ClassificationResult {
	kept := make([]models.ClassificationResult, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}
