package llm

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/config"
	"news-analysis/logger"
	"news-analysis/metrics"
)

// Ensure OpenAI implements Completer
var _ Completer = (*OpenAI)(nil)

// OpenAI submits prompts as chat completions with a strict JSON schema response format.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewOpenAI creates a completer bound to one model. Extra request options are
// appended after the ones derived from cfg.
func NewOpenAI(cfg config.OpenAIConfig, model string, log *logger.Logger, opts ...option.RequestOption) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "openai API key is required")
	}
	if model == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "openai model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60.0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAI{
		client:  openai.NewClient(reqOpts...),
		model:   model,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With("component", "openai", "model", model),
	}, nil
}

// Complete sends the prompt and decodes the JSON answer into out.
func (o *OpenAI) Complete(ctx context.Context, prompt agent.Prompt, out any) error {
	name, schema, err := SchemaFor(out)
	if err != nil {
		return apperrors.Wrap(err, "build response schema")
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, "completion rate limiter")
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.Task),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		metrics.RecordCompletion(prompt.Agent, o.model, time.Since(start), "error")
		return apperrors.Wrapf(err, "openai completion for %s", prompt.Agent)
	}

	metrics.RecordTokens(o.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		metrics.RecordCompletion(prompt.Agent, o.model, time.Since(start), "malformed")
		return apperrors.Wrap(apperrors.ErrMalformedResponse, "no choices returned")
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		metrics.RecordCompletion(prompt.Agent, o.model, time.Since(start), "malformed")
		return apperrors.Wrapf(apperrors.ErrMalformedResponse, "model refused: %s", msg.Refusal)
	}

	if err := Decode(msg.Content, out); err != nil {
		metrics.RecordCompletion(prompt.Agent, o.model, time.Since(start), "malformed")
		o.log.Warnw("Completion did not match schema", "agent", prompt.Agent, "schema", name, "error", err)
		return err
	}

	metrics.RecordCompletion(prompt.Agent, o.model, time.Since(start), "success")
	o.log.Debugw("Completion decoded",
		"agent", prompt.Agent,
		"schema", name,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return nil
}
