package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"news-analysis/agent"
	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/models"
)

// Stages are the collaborators of one pipeline run.
type Stages struct {
	Planner     *Planner
	Collector   *Collector
	Acquirer    *Acquirer
	Classifier  *Classifier
	Synthesizer *Synthesizer
	Analyst     *Analyst
	Reducer     *Reducer
}

// Result is the outcome of one subject's run.
type Result struct {
	RunID     string           `json:"run_id"`
	Subject   string           `json:"subject"`
	Links     int              `json:"links"`
	Fetched   int              `json:"fetched"`
	Relevant  int              `json:"relevant"`
	Agents    []string         `json:"agents"`
	Summaries []models.Summary `json:"summaries"`
}

// Pipeline drives the stages for one subject at a time.
type Pipeline struct {
	stages Stages
	log    *logger.Logger
}

func New(stages Stages, log *logger.Logger) *Pipeline {
	return &Pipeline{stages: stages, log: log.With("component", "pipeline")}
}

// Run executes plan, collect, fetch, classify, date, synthesize, analyze and
// summarize for subject. Planning and synthesis errors fail the run; per-article
// failures drop the article.
func (p *Pipeline) Run(ctx context.Context, subject string, days int) (res *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With("run_id", runID, "subject", subject)

	defer func() {
		metrics.RecordRun(time.Since(start), err)
	}()

	res = &Result{RunID: runID, Subject: subject}
	s := p.stages

	plan, err := s.Planner.PlanQuestions(ctx, subject)
	if err != nil {
		return nil, err
	}
	log.Infow("Questions planned", "questions", len(plan.Questions), "threshold", plan.Threshold)

	queries, err := s.Planner.PlanQueries(ctx, subject)
	if err != nil {
		return nil, err
	}
	log.Infow("Search terms planned", "queries", len(queries))

	links, err := s.Collector.Collect(ctx, queries, days)
	if err != nil {
		return nil, err
	}
	res.Links = len(links)

	articles := s.Acquirer.FetchAll(ctx, links)
	res.Fetched = len(articles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classified, err := s.Classifier.Classify(ctx, subject, articles, plan)
	if err != nil {
		return nil, err
	}

	relevant := Filter(classified, plan.Threshold)
	metrics.RecordStage("filtered", len(relevant))
	log.Infow("Articles classified",
		"before", len(articles),
		"classified", len(classified),
		"relevant", len(relevant))

	relevant, err = s.Acquirer.ResolveDates(ctx, relevant)
	if err != nil {
		return nil, err
	}
	res.Relevant = len(relevant)

	if len(relevant) == 0 {
		log.Infow("No relevant articles, skipping analysis")
		return res, nil
	}

	agents, err := s.Synthesizer.Synthesize(ctx, subject, Corpus(relevant))
	if err != nil {
		return nil, err
	}
	for _, a := range agents {
		res.Agents = append(res.Agents, a.Name)
	}

	res.Summaries, err = p.summarize(ctx, log, relevant, agents)
	if err != nil {
		return nil, err
	}

	log.Infow("Run finished", "summaries", len(res.Summaries), "duration", time.Since(start))
	return res, nil
}

func (p *Pipeline) summarize(ctx context.Context, log *logger.Logger, articles []models.ClassificationResult, agents []agent.Agent) ([]models.Summary, error) {
	summaries := make([]models.Summary, 0, len(articles))
	for _, article := range articles {
		analyses, err := p.stages.Analyst.Analyze(ctx, article, agents)
		if err == nil {
			var summary models.Summary
			summary, err = p.stages.Reducer.Summarize(ctx, article, analyses)
			if err == nil {
				summaries = append(summaries, summary)
				continue
			}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.RecordDrop("analysis")
		log.Errorw("Analysis failed, skipping article", "url", article.URL, "error", err)
	}

	metrics.RecordStage("summarized", len(summaries))
	return summaries, nil
}

// Corpus concatenates article bodies for theming.
func Corpus(articles []models.ClassificationResult) string {
	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Text
	}
	return strings.Join(texts, "\n\n")
}
