package models

import "time"

// SearchTerm is a planned search query paired with the tag it contributes.
type SearchTerm struct {
	Term string `json:"search_term"`
	Tag  string `json:"tag"`
}

// QuestionsAndThreshold is the per-subject relevance checklist.
type QuestionsAndThreshold struct {
	Questions []string `json:"questions"`
	Threshold int      `json:"threshold"`
}

// LinkTag is a collected URL with every tag that reached it.
type LinkTag struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// AddTag appends tag unless it is already present.
func (l *LinkTag) AddTag(tag string) {
	for _, t := range l.Tags {
		if t == tag {
			return
		}
	}
	l.Tags = append(l.Tags, tag)
}

// Article is a fetched and parsed page.
type Article struct {
	URL   string
	Title string
	Text  string
	HTML  string
	Tags  []string
	// ParsedAt is the timestamp the page parser found, if any.
	ParsedAt *time.Time
	// PublishedDate is set by date resolution only.
	PublishedDate *time.Time
}

// ClassificationResult is an article with its relevance score.
type ClassificationResult struct {
	Article
	Score int
}

// AgentAnalysis is one agent's output for one article.
type AgentAnalysis struct {
	Agent    string `json:"agent"`
	URL      string `json:"url"`
	Analysis string `json:"analysis"`
}

// Summary is the terminal record of a run, handed to persistence.
type Summary struct {
	URL           string    `json:"link"`
	Title         string    `json:"title"`
	PublishedDate time.Time `json:"published_date"`
	Score         int       `json:"classification_score"`
	Summary       string    `json:"summary"`
	Tags          []string  `json:"tags"`
}
