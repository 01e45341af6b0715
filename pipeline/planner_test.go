package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
	"news-analysis/llm/llmtest"
)

func questions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Question %d?", i+1)
	}
	return out
}

func TestPlanQuestions(t *testing.T) {
	tests := []struct {
		name          string
		resp          llm.QuestionsResponse
		fallback      int
		wantQuestions int
		wantThreshold int
	}{
		{"within bounds", llm.QuestionsResponse{Questions: questions(10), Threshold: 4}, 6, 10, 4},
		{"threshold zero uses fallback", llm.QuestionsResponse{Questions: questions(10), Threshold: 0}, 6, 10, 6},
		{"threshold above count uses fallback", llm.QuestionsResponse{Questions: questions(10), Threshold: 11}, 6, 10, 6},
		{"fallback clamped to count", llm.QuestionsResponse{Questions: questions(3), Threshold: 9}, 6, 3, 3},
		{"too many questions truncated", llm.QuestionsResponse{Questions: questions(25), Threshold: 21}, 6, MaxQuestions, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := llmtest.New().Respond(agent.QuestionPlanner, tt.resp)
			planner := NewPlanner(completer, agent.Default(), tt.fallback, testLogger())

			plan, err := planner.PlanQuestions(context.Background(), "Tesla")
			require.NoError(t, err)
			assert.Len(t, plan.Questions, tt.wantQuestions)
			assert.Equal(t, tt.wantThreshold, plan.Threshold)
			assert.Equal(t, "Question 1?", plan.Questions[0])
		})
	}
}

func TestPlanQuestionsBindsSubject(t *testing.T) {
	completer := llmtest.New().Respond(agent.QuestionPlanner, llm.QuestionsResponse{Questions: questions(2), Threshold: 1})
	planner := NewPlanner(completer, agent.Default(), 6, testLogger())

	_, err := planner.PlanQuestions(context.Background(), "Tesla")
	require.NoError(t, err)

	calls := completer.Calls(agent.QuestionPlanner)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "Tesla")
	assert.NotContains(t, calls[0].System, "{{")
}

func TestPlanQuestionsMalformed(t *testing.T) {
	completer := llmtest.New().Respond(agent.QuestionPlanner, `{"questions": []}`)
	planner := NewPlanner(completer, agent.Default(), 6, testLogger())

	_, err := planner.PlanQuestions(context.Background(), "Tesla")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPlanning))
	assert.Len(t, completer.Calls(agent.QuestionPlanner), 1, "planning is not retried")
}

func TestPlanQueries(t *testing.T) {
	var resp llm.SearchTermsResponse
	for i := 0; i < 7; i++ {
		resp.Queries = append(resp.Queries, llm.SearchTermItem{
			SearchTerm: fmt.Sprintf(" Tesla term %d ", i),
			Tag:        fmt.Sprintf("Tag %d", i),
		})
	}
	completer := llmtest.New().Respond(agent.SearchTerms, resp)
	planner := NewPlanner(completer, agent.Default(), 6, testLogger())

	terms, err := planner.PlanQueries(context.Background(), "Tesla")
	require.NoError(t, err)
	require.Len(t, terms, MaxQueries)
	assert.Equal(t, "Tesla term 0", terms[0].Term)
	assert.Equal(t, "Tag 4", terms[4].Tag)
}

func TestPlanQueriesMalformed(t *testing.T) {
	completer := llmtest.New().Respond(agent.SearchTerms, `{"queries": [{"search_term": "", "tag": "x"}]}`)
	planner := NewPlanner(completer, agent.Default(), 6, testLogger())

	_, err := planner.PlanQueries(context.Background(), "Tesla")
	assert.True(t, errors.Is(err, apperrors.ErrPlanning))
	assert.True(t, errors.Is(err, apperrors.ErrMalformedResponse))
}
