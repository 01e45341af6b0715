// Package llmtest provides a scripted Completer for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"news-analysis/agent"
	"news-analysis/apperrors"
	"news-analysis/llm"
)

// Any matches prompts from every agent without a dedicated handler.
const Any = "*"

// Handler answers one prompt. A string result is used as raw JSON, anything
// else is marshaled.
type Handler func(p agent.Prompt) (any, error)

var _ llm.Completer = (*Completer)(nil)

// Completer routes prompts to handlers by agent name and records every call.
type Completer struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []agent.Prompt
}

func New() *Completer {
	return &Completer{handlers: make(map[string]Handler)}
}

// On registers h for prompts from the named agent.
func (c *Completer) On(name string, h Handler) *Completer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = h
	return c
}

// Respond always answers the named agent with v.
func (c *Completer) Respond(name string, v any) *Completer {
	return c.On(name, func(agent.Prompt) (any, error) { return v, nil })
}

// Fail always answers the named agent with err.
func (c *Completer) Fail(name string, err error) *Completer {
	return c.On(name, func(agent.Prompt) (any, error) { return nil, err })
}

func (c *Completer) Complete(ctx context.Context, prompt agent.Prompt, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.calls = append(c.calls, prompt)
	h, ok := c.handlers[prompt.Agent]
	if !ok {
		h, ok = c.handlers[Any]
	}
	c.mu.Unlock()

	if !ok {
		return apperrors.Wrapf(apperrors.ErrExternal, "llmtest: no handler for agent %q", prompt.Agent)
	}

	v, err := h(prompt)
	if err != nil {
		return err
	}

	var raw string
	switch val := v.(type) {
	case string:
		raw = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("llmtest: marshal response: %w", err)
		}
		raw = string(b)
	}

	return llm.Decode(raw, out)
}

// Calls returns the prompts sent by the named agent, or every prompt for Any.
func (c *Completer) Calls(name string) []agent.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []agent.Prompt
	for _, p := range c.calls {
		if name == Any || p.Agent == name {
			out = append(out, p)
		}
	}
	return out
}
