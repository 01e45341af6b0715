// Package pipeline turns a subject into scored, summarized news: planning,
// link collection, acquisition, classification, agent synthesis, analysis and
// summarization.
package pipeline

import (
	"context"
	"strings"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/logger"
	"news-analysis/models"
)

// Upper bounds on model-produced collections. Longer answers are truncated.
const (
	MaxQuestions = 20
	MaxQueries   = 5
	MaxAgents    = 5
)

// Planner produces the relevance checklist and search queries for a subject.
type Planner struct {
	completer         llm.Completer
	registry          *agent.Registry
	fallbackThreshold int
	log               *logger.Logger
}

func NewPlanner(completer llm.Completer, registry *agent.Registry, fallbackThreshold int, log *logger.Logger) *Planner {
	return &Planner{
		completer:         completer,
		registry:          registry,
		fallbackThreshold: fallbackThreshold,
		log:               log.With("component", "planner"),
	}
}

// PlanQuestions asks for at most MaxQuestions yes/no questions and a
// threshold. A threshold outside [1, len(questions)] is replaced by the
// configured fallback, clamped to the same range.
func (p *Planner) PlanQuestions(ctx context.Context, subject string) (models.QuestionsAndThreshold, error) {
	a, err := p.registry.Render(agent.QuestionPlanner, subject)
	if err != nil {
		return models.QuestionsAndThreshold{}, apperrors.Mark(apperrors.ErrPlanning, err, "render planner agent")
	}

	resp, err := llm.Submit[llm.QuestionsResponse](ctx, p.completer, a.Prompt("Generate the questions and the threshold."))
	if err != nil {
		return models.QuestionsAndThreshold{}, apperrors.Mark(apperrors.ErrPlanning, err, "plan questions for %s", subject)
	}

	questions := make([]string, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		questions = append(questions, strings.TrimSpace(q))
	}
	if len(questions) > MaxQuestions {
		p.log.Warnw("Too many questions, truncating", "subject", subject, "count", len(questions))
		questions = questions[:MaxQuestions]
	}

	threshold := resp.Threshold
	if threshold < 1 || threshold > len(questions) {
		p.log.Warnw("Threshold out of range, using fallback",
			"subject", subject,
			"threshold", threshold,
			"questions", len(questions),
			"fallback", p.fallbackThreshold)
		threshold = clamp(p.fallbackThreshold, 1, len(questions))
	}

	return models.QuestionsAndThreshold{Questions: questions, Threshold: threshold}, nil
}

// PlanQueries asks for at most MaxQueries (search term, tag) pairs.
func (p *Planner) PlanQueries(ctx context.Context, subject string) ([]models.SearchTerm, error) {
	a, err := p.registry.Render(agent.SearchTerms, subject)
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrPlanning, err, "render planner agent")
	}

	resp, err := llm.Submit[llm.SearchTermsResponse](ctx, p.completer, a.Prompt("Generate the search terms and tags."))
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrPlanning, err, "plan queries for %s", subject)
	}

	items := resp.Queries
	if len(items) > MaxQueries {
		p.log.Warnw("Too many search terms, truncating", "subject", subject, "count", len(items))
		items = items[:MaxQueries]
	}

	terms := make([]models.SearchTerm, 0, len(items))
	for _, item := range items {
		terms = append(terms, models.SearchTerm{
			Term: strings.TrimSpace(item.SearchTerm),
			Tag:  strings.TrimSpace(item.Tag),
		})
	}
	return terms, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
