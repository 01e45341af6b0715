package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/config"
	"news-analysis/logger"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string         `json:"name"`
			Strict bool           `json:"strict"`
			Schema map[string]any `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

func chatServer(t *testing.T, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		body, _ := json.Marshal(content)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`, body)
	}))
}

func newTestOpenAI(t *testing.T, url string) *OpenAI {
	t.Helper()
	cfg := config.OpenAIConfig{APIKey: "sk-test", BaseURL: url + "/", RequestsPerMinute: 6000, Burst: 10}
	client, err := NewOpenAI(cfg, "gpt-4o-mini", logger.Nop(), option.WithMaxRetries(0))
	require.NoError(t, err)
	return client
}

func TestOpenAICompleteDecodesStructuredResponse(t *testing.T) {
	var captured capturedRequest
	srv := chatServer(t, `{"score": 7}`, &captured)
	defer srv.Close()

	client := newTestOpenAI(t, srv.URL)
	prompt := agent.Agent{Name: "Scorer", Role: "scores", Function: "score it"}.Prompt("article text")

	resp, err := Submit[ScoreResponse](context.Background(), client, prompt)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Score)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, prompt.System, captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "article text", captured.Messages[1].Content)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	assert.Equal(t, "ScoreResponse", captured.ResponseFormat.JSONSchema.Name)
	assert.True(t, captured.ResponseFormat.JSONSchema.Strict)
	assert.Contains(t, captured.ResponseFormat.JSONSchema.Schema["properties"], "score")
}

func TestOpenAICompleteMalformed(t *testing.T) {
	srv := chatServer(t, `not json`, nil)
	defer srv.Close()

	client := newTestOpenAI(t, srv.URL)

	_, err := Submit[ScoreResponse](context.Background(), client, agent.Prompt{Agent: "Scorer", System: "s", Task: "t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedResponse))
}

func TestOpenAICompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "bad request", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	client := newTestOpenAI(t, srv.URL)

	_, err := Submit[ScoreResponse](context.Background(), client, agent.Prompt{Agent: "Scorer", System: "s", Task: "t"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrMalformedResponse))
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(config.OpenAIConfig{}, "gpt-4o-mini", logger.Nop())
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
