package pipeline

import (
	"context"
	"strings"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/models"
)

// Analyst runs synthesized agents over articles.
type Analyst struct {
	completer llm.Completer
}

func NewAnalyst(completer llm.Completer) *Analyst {
	return &Analyst{completer: completer}
}

// Analyze returns one analysis per agent, in agent order. Each agent sees only
// the article. The first failing agent fails the whole article.
func (a *Analyst) Analyze(ctx context.Context, article models.ClassificationResult, agents []agent.Agent) ([]models.AgentAnalysis, error) {
	task := "article:" + article.Text

	analyses := make([]models.AgentAnalysis, 0, len(agents))
	for _, ag := range agents {
		resp, err := llm.Submit[llm.AnalysisResponse](ctx, a.completer, ag.Prompt(task))
		if err != nil {
			return nil, apperrors.Mark(apperrors.ErrAnalysis, err, "agent %q on %s", ag.Name, article.URL)
		}
		analyses = append(analyses, models.AgentAnalysis{
			Agent:    ag.Name,
			URL:      article.URL,
			Analysis: resp.Analysis,
		})
	}
	return analyses, nil
}

// Reducer condenses an article's analyses into one summary paragraph.
type Reducer struct {
	completer llm.Completer
	registry  *agent.Registry
}

func NewReducer(completer llm.Completer, registry *agent.Registry) *Reducer {
	return &Reducer{completer: completer, registry: registry}
}

// Summarize joins the analyses in order and asks the summary agent for one
// paragraph. Everything else is carried over from the classification result.
func (r *Reducer) Summarize(ctx context.Context, article models.ClassificationResult, analyses []models.AgentAnalysis) (models.Summary, error) {
	ag, err := r.registry.Get(agent.Summary)
	if err != nil {
		return models.Summary{}, err
	}

	reports := make([]string, len(analyses))
	for i, a := range analyses {
		reports[i] = a.Analysis
	}

	resp, err := llm.Submit[llm.SummaryResponse](ctx, r.completer, ag.Prompt(strings.Join(reports, "\n\n")))
	if err != nil {
		return models.Summary{}, apperrors.Mark(apperrors.ErrSummary, err, "summarize %s", article.URL)
	}

	s := models.Summary{
		URL:     article.URL,
		Title:   article.Title,
		Score:   article.Score,
		Summary: strings.TrimSpace(resp.Summary),
		Tags:    append([]string(nil), article.Tags...),
	}
	if article.PublishedDate != nil {
		s.PublishedDate = *article.PublishedDate
	}
	return s, nil
}
