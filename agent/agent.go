// Package agent holds the immutable instruction sets ("agents") that are
// rendered into two-message prompts for the completion service.
package agent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"news-analysis/apperrors"
)

// Agent is a named instruction set. Function may reference {{.Subject}};
// Bind produces a rendered copy and never mutates the receiver.
type Agent struct {
	Name     string
	Role     string
	Function string
	Subject  string
}

// Prompt is the ordered pair of system instructions and task content.
type Prompt struct {
	Agent  string
	System string
	Task   string
}

type binding struct {
	Subject string
}

// Bind renders the subject placeholder and returns a new Agent.
func (a Agent) Bind(subject string) (Agent, error) {
	tmpl, err := template.New(a.Name).Option("missingkey=error").Parse(a.Function)
	if err != nil {
		return Agent{}, apperrors.Wrapf(err, "parse function of agent %q", a.Name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, binding{Subject: subject}); err != nil {
		return Agent{}, apperrors.Wrapf(err, "render function of agent %q", a.Name)
	}

	bound := a
	bound.Function = buf.String()
	bound.Subject = subject
	return bound, nil
}

// Prompt renders the agent into a system message followed by the task.
func (a Agent) Prompt(task string) Prompt {
	system := fmt.Sprintf(
		"You are a: %s. Your role: %s. Your function: %s. Based on your role and function, do the task you are given. Do not give me anything else other than the given task",
		a.Name, a.Role, strings.TrimSpace(a.Function),
	)
	return Prompt{Agent: a.Name, System: system, Task: task}
}

// Validate reports whether every field needed to prompt the agent is present.
func (a Agent) Validate() error {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return apperrors.Wrap(apperrors.ErrInvalidInput, "agent name is empty")
	case strings.TrimSpace(a.Role) == "":
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "agent %q has no role", a.Name)
	case strings.TrimSpace(a.Function) == "":
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "agent %q has no function", a.Name)
	}
	return nil
}
