package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/llm/llmtest"
	"news-analysis/retry"
)

func TestSynthesize(t *testing.T) {
	completer := llmtest.New().
		Respond(agent.PrimaryAnalysis, themes("Stock Impact", "Regulation", "Supply Chain")).
		On(agent.AgentCreator, echoCreator)
	s := NewSynthesizer(completer, agent.Default(), 5, testLogger())

	agents, err := s.Synthesize(context.Background(), "Tesla", "corpus text")
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "Stock Impact", agents[0].Name)
	assert.Equal(t, "Supply Chain", agents[2].Name)
	for _, a := range agents {
		assert.NoError(t, a.Validate())
	}

	primary := completer.Calls(agent.PrimaryAnalysis)
	require.Len(t, primary, 1)
	assert.Equal(t, "News: corpus text", primary[0].Task)
	assert.Contains(t, primary[0].System, "Tesla")

	creator := completer.Calls(agent.AgentCreator)
	require.Len(t, creator, 3)
	assert.Equal(t, "name:Regulation description:Looks at Regulation", creator[1].Task)
}

func TestSynthesizeTruncatesThemes(t *testing.T) {
	completer := llmtest.New().
		Respond(agent.PrimaryAnalysis, themes("a", "b", "c", "d", "e", "f", "g")).
		On(agent.AgentCreator, echoCreator)
	s := NewSynthesizer(completer, agent.Default(), 5, testLogger())

	agents, err := s.Synthesize(context.Background(), "Tesla", "corpus")
	require.NoError(t, err)
	assert.Len(t, agents, MaxAgents)
}

func TestSynthesizeRetriesExpansionBatch(t *testing.T) {
	calls := 0
	completer := llmtest.New().
		Respond(agent.PrimaryAnalysis, themes("a", "b")).
		On(agent.AgentCreator, func(p agent.Prompt) (any, error) {
			calls++
			// the second agent of the first two batches is malformed
			if calls == 2 || calls == 4 {
				return `{"name": "b", "role": "", "function": "f"}`, nil
			}
			return echoCreator(p)
		})
	s := NewSynthesizer(completer, agent.Default(), 5, testLogger())

	agents, err := s.Synthesize(context.Background(), "Tesla", "corpus")
	require.NoError(t, err)
	assert.Len(t, agents, 2)
	assert.Equal(t, 6, calls, "three batches of two")
	assert.Len(t, completer.Calls(agent.PrimaryAnalysis), 1, "theming is not retried")
}

func TestSynthesizeExhausted(t *testing.T) {
	completer := llmtest.New().
		Respond(agent.PrimaryAnalysis, themes("a", "b")).
		Fail(agent.AgentCreator, errors.New("service unavailable"))
	s := NewSynthesizer(completer, agent.Default(), 3, testLogger())

	_, err := s.Synthesize(context.Background(), "Tesla", "corpus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSynthesis))
	assert.True(t, errors.Is(err, retry.ErrExhausted))
	assert.Len(t, completer.Calls(agent.AgentCreator), 3, "first agent fails each of three attempts")
}

func TestSynthesizeRejectsCopiedDescription(t *testing.T) {
	completer := llmtest.New().
		Respond(agent.PrimaryAnalysis, themes("a")).
		On(agent.AgentCreator, func(p agent.Prompt) (any, error) {
			return llm.AgentSpecResponse{Name: "a", Role: "Looks at a", Function: "Do things"}, nil
		})
	s := NewSynthesizer(completer, agent.Default(), 2, testLogger())

	_, err := s.Synthesize(context.Background(), "Tesla", "corpus")
	assert.True(t, errors.Is(err, apperrors.ErrSynthesis))
	assert.True(t, errors.Is(err, apperrors.ErrMalformedResponse))
}

func TestSynthesizeNoThemes(t *testing.T) {
	completer := llmtest.New().Respond(agent.PrimaryAnalysis, `{"agents": []}`)
	s := NewSynthesizer(completer, agent.Default(), 5, testLogger())

	_, err := s.Synthesize(context.Background(), "Tesla", "corpus")
	assert.True(t, errors.Is(err, apperrors.ErrSynthesis))
	assert.Empty(t, completer.Calls(agent.AgentCreator))
}

func TestExpansionTask(t *testing.T) {
	task := ExpansionTask(llm.AgentDescription{Name: "Stock Impact Agent", Description: "Analyzes stock impact."})
	assert.True(t, strings.HasPrefix(task, "name:Stock Impact Agent"))
	assert.Equal(t, "name:Stock Impact Agent description:Analyzes stock impact.", task)
}
