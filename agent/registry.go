package agent

import (
	"sort"
	"sync"

	"news-analysis/apperrors"
)

// Canonical agent names.
const (
	QuestionPlanner = "Classification Question Agent"
	SearchTerms     = "Search Terms Agent"
	Classification  = "News Classification Agent"
	PrimaryAnalysis = "Primary Analysis Agent"
	AgentCreator    = "Agent creating agent"
	Summary         = "Financial Impact Summary Agent"
	PublishedDate   = "Published Date Agent"
)

var builtin = []Agent{
	{
		Name:     QuestionPlanner,
		Role:     "You are an agent that designs relevance checklists for news monitoring. Your role is to write yes/no questions that decide whether a news article matters for following a given company or region, and to choose how many yes answers make an article relevant.",
		Function: `Your function is to write at most 20 yes/no questions that decide whether a news article is relevant to {{.Subject}}.
    Cover financial performance, products and projects, technology, competition, operations and facilities, market and stock signals, regulation and legal matters, and strategy.
    Each question must stand on its own and mention {{.Subject}} where it helps. Do not put calendar dates, years or months in the questions.
    Also give a threshold: the minimum number of yes answers an article needs to be considered relevant. The threshold must be between 1 and the number of questions.`,
	},
	{
		Name:     SearchTerms,
		Role:     "You are an agent specialized in creating optimized Google search queries to gather news articles focused on a company's financial performance. Your task is to craft queries that consider the company's business operations and industry context to extract the most relevant financial news, each paired with a tag describing its focus.",
		Function: `Your function is to generate 5 targeted search term and tag pairs that will retrieve news articles related to the financial performance of {{.Subject}}.
    The search terms should reflect the company's core business activities, industry trends, market challenges, revenue drivers, strategic initiatives, and competitive positioning.
    Each pair should consist of a concise search term and a corresponding tag that categorizes the focus of the search (e.g., "Earnings Analysis", "Market Sentiment", "Regulatory Impact", "Competitive Positioning", "Strategic Moves").
    Ensure each term is unique, directly relevant to {{.Subject}}'s financial landscape, and do not provide more than 5 pairs.`,
	},
	{
		Name:     Classification,
		Role:     "You are an agent that specializes in identifying news stories related to a specified company or region. Your role involves analyzing the provided news articles and answering specific questions to determine if the article is relevant. Based on your analysis, provide a score reflecting the number of relevant indicators found.",
		Function: `Your function is to answer every question given with the article for {{.Subject}} with yes or no, then report the number of yes answers as the score. Only answer yes when the article clearly supports it.`,
	},
	{
		Name:     PrimaryAnalysis,
		Role:     "You are a financial performance analysis agent specializing in assessing news articles to evaluate a company's financial health and potential impact on its stock price. Your role involves understanding the provided news articles and identifying key financial factors and market signals related to the company.",
		Function: `Your function is to analyze the provided news stories about {{.Subject}} and identify recurring financial themes or noteworthy indicators that may influence its stock price or overall financial performance.
    Based on these insights, create a list of specialized agents needed for deeper analysis. Provide a list of a MAXIMUM of 5 themed agents. Don't give more than 5.
    This includes assessing market sentiment, potential revenue or profit impacts, stock price fluctuations, competitive positioning, and regulatory or operational risks.
    Ensure the agent descriptions are clearly defined and relevant to financial analysis, with each description being clear, concise, and around 2 lines.

    Example:
    name: Stock Impact Agent
    description: Analyzes the news articles to identify factors that may positively or negatively affect the company's stock price, such as market sentiment, performance metrics, or external risks.`,
	},
	{
		Name:     AgentCreator,
		Role:     "You are an helpful agent that generates the formatted reply for a given task. Your role is to give back the name of a agent that can do the given prompt task, the role of that child agent that would perfectly describe for it to do the given task and the function that the child agent will perform for it to do the given task. You will write the role and function in second person to describe the agent as this will be used to create and inform the agent of its role and function",
		Function: `Your function is to create a child agent that will perform the given task in prompt, think carefully and given the description, pass on the name, role and function of this agent please. The role and function need to be descriptive with two to three sentences describing them in detail. Make sure the role and function are relevant to the task in the prompt and are short and concise. Do not copy the task description as the role or the function.

    Example:
    name: Search Term Generation Agent
    role: You are an agent that examines the given market news and a list of analyzing agents, focusing on identifying the necessary search terms. Your role involves understanding the key themes and specific analysis needs to provide targeted search terms for gathering relevant articles.
    function: Your function is to read through the provided news stories and the list of analyzing agents with their specific roles. Based on this information, you generate a list of search terms that will help fetch relevant articles from various sources for further analysis by the specialized agents.`,
	},
	{
		Name:     Summary,
		Role:     "You are an expert financial analysis agent that extracts and summarizes key findings from the analysis report, focusing on the company's financial performance and potential impact on its stock price. Your role involves understanding the report and condensing the information into a concise summary that highlights the financial implications.",
		Function: "Your function is to read through the analysis report and provide a one-paragraph summary that captures the key financial insights. Focus on the potential impact on the company's financial performance, market position, and stock price. Ensure the summary is concise, clear, and relevant. Do not include anything unrelated to the financial impact or stock price implications.",
	},
	{
		Name:     PublishedDate,
		Role:     "You are an expert in published date extraction from article html.",
		Function: "Your function is to extract the published date of the news article from the given html. Search for date patterns in the html. Extract it and convert it into ISO 8601 standard date format. If you can't find any dates provide 1970-01-01 as date.",
	},
}

// Registry holds the canonical agents. Lookups return copies.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of built-in agents.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(builtin...)
	})
	return defaultRegistry
}

// NewRegistry builds a registry from the given agents.
func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[string]Agent, len(agents))}
	for _, a := range agents {
		r.agents[a.Name] = a
	}
	return r
}

// Get returns the canonical agent with the given name.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.RLock()
	a, ok := r.agents[name]
	r.mu.RUnlock()

	if !ok {
		return Agent{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "agent not found: %s", name)
	}
	return a, nil
}

// Render returns the named agent bound to subject.
func (r *Registry) Render(name, subject string) (Agent, error) {
	a, err := r.Get(name)
	if err != nil {
		return Agent{}, err
	}
	return a.Bind(subject)
}

// List returns all agent names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
