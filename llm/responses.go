package llm

import (
	"errors"
	"strings"
)

// QuestionsResponse is the planned relevance checklist.
type QuestionsResponse struct {
	Questions []string `json:"questions" jsonschema_description:"Yes/no questions that decide whether an article is relevant."`
	Threshold int      `json:"threshold" jsonschema_description:"Minimum number of yes answers for an article to be relevant."`
}

func (r *QuestionsResponse) Validate() error {
	if len(r.Questions) == 0 {
		return errors.New("no questions")
	}
	for _, q := range r.Questions {
		if strings.TrimSpace(q) == "" {
			return errors.New("empty question")
		}
	}
	return nil
}

type SearchTermItem struct {
	SearchTerm string `json:"search_term" jsonschema_description:"A concise web search query."`
	Tag        string `json:"tag" jsonschema_description:"Short label describing the focus of the query."`
}

// SearchTermsResponse is the planned set of search queries.
type SearchTermsResponse struct {
	Queries []SearchTermItem `json:"queries"`
}

func (r *SearchTermsResponse) Validate() error {
	if len(r.Queries) == 0 {
		return errors.New("no search terms")
	}
	for _, q := range r.Queries {
		if strings.TrimSpace(q.SearchTerm) == "" || strings.TrimSpace(q.Tag) == "" {
			return errors.New("search term or tag is empty")
		}
	}
	return nil
}

// ScoreResponse is a classification score.
type ScoreResponse struct {
	Score int `json:"score" jsonschema_description:"Number of questions answered yes."`
}

func (r *ScoreResponse) Validate() error {
	if r.Score < 0 {
		return errors.New("negative score")
	}
	return nil
}

// PublishedDateResponse carries an ISO 8601 date string.
type PublishedDateResponse struct {
	PublishedDate string `json:"published_date" jsonschema_description:"Publication date in ISO 8601 format, 1970-01-01 when unknown."`
}

type AgentDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AgentDescriptionsResponse lists thematic analysis angles.
type AgentDescriptionsResponse struct {
	Agents []AgentDescription `json:"agents"`
}

func (r *AgentDescriptionsResponse) Validate() error {
	if len(r.Agents) == 0 {
		return errors.New("no agent descriptions")
	}
	for _, a := range r.Agents {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Description) == "" {
			return errors.New("agent description has empty name or description")
		}
	}
	return nil
}

// AgentSpecResponse is a generated instruction set.
type AgentSpecResponse struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Function string `json:"function"`
}

func (r *AgentSpecResponse) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Role) == "" || strings.TrimSpace(r.Function) == "" {
		return errors.New("agent spec has empty name, role or function")
	}
	return nil
}

type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}

func (r *AnalysisResponse) Validate() error {
	if strings.TrimSpace(r.Analysis) == "" {
		return errors.New("empty analysis")
	}
	return nil
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

func (r *SummaryResponse) Validate() error {
	if strings.TrimSpace(r.Summary) == "" {
		return errors.New("empty summary")
	}
	return nil
}
