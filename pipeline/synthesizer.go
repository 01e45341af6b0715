package pipeline

import (
	"context"
	"fmt"
	"strings"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/logger"
	"news-analysis/retry"
)

// Synthesizer builds the analysis agent roster from the filtered corpus.
type Synthesizer struct {
	completer   llm.Completer
	registry    *agent.Registry
	maxAttempts int
	log         *logger.Logger
}

func NewSynthesizer(completer llm.Completer, registry *agent.Registry, maxAttempts int, log *logger.Logger) *Synthesizer {
	return &Synthesizer{
		completer:   completer,
		registry:    registry,
		maxAttempts: maxAttempts,
		log:         log.With("component", "synthesizer"),
	}
}

// Synthesize names at most MaxAgents themes in the corpus and expands each
// into a full agent. The expansion round is retried as a whole; a partial
// roster is never returned.
func (s *Synthesizer) Synthesize(ctx context.Context, subject, corpus string) ([]agent.Agent, error) {
	themes, err := s.themes(ctx, subject, corpus)
	if err != nil {
		return nil, err
	}

	agents, err := retry.Value(ctx, s.maxAttempts, func(ctx context.Context, attempt int) ([]agent.Agent, error) {
		return s.expand(ctx, themes)
	}, retry.OnRetry(func(attempt int, err error) {
		s.log.Infow("Failed to create agents, trying again", "subject", subject, "attempt", attempt, "error", err)
	}))
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrSynthesis, err, "expand agents for %s", subject)
	}

	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	s.log.Infow("Dynamic agents created", "subject", subject, "agents", names)
	return agents, nil
}

func (s *Synthesizer) themes(ctx context.Context, subject, corpus string) ([]llm.AgentDescription, error) {
	primary, err := s.registry.Render(agent.PrimaryAnalysis, subject)
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrSynthesis, err, "render theming agent")
	}

	resp, err := llm.Submit[llm.AgentDescriptionsResponse](ctx, s.completer, primary.Prompt("News: "+corpus))
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrSynthesis, err, "theme corpus for %s", subject)
	}

	themes := resp.Agents
	if len(themes) > MaxAgents {
		s.log.Warnw("Too many agent descriptions, truncating", "subject", subject, "count", len(themes))
		themes = themes[:MaxAgents]
	}
	return themes, nil
}

func (s *Synthesizer) expand(ctx context.Context, themes []llm.AgentDescription) ([]agent.Agent, error) {
	creator, err := s.registry.Get(agent.AgentCreator)
	if err != nil {
		return nil, err
	}

	agents := make([]agent.Agent, 0, len(themes))
	for _, theme := range themes {
		task := ExpansionTask(theme)

		spec, err := llm.Submit[llm.AgentSpecResponse](ctx, s.completer, creator.Prompt(task))
		if err != nil {
			return nil, apperrors.Wrapf(err, "expand %q", theme.Name)
		}

		a := agent.Agent{
			Name:     strings.TrimSpace(spec.Name),
			Role:     strings.TrimSpace(spec.Role),
			Function: strings.TrimSpace(spec.Function),
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		desc := strings.TrimSpace(theme.Description)
		if a.Role == desc || a.Function == desc {
			return nil, apperrors.Wrapf(apperrors.ErrMalformedResponse, "agent %q copies its description", a.Name)
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// ExpansionTask renders one theme as the agent creator's task.
func ExpansionTask(theme llm.AgentDescription) string {
	return fmt.Sprintf("name:%s description:%s", theme.Name, theme.Description)
}
