package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Completion service metrics
	CompletionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_completion_calls_total",
			Help: "Total number of completion service calls",
		},
		[]string{"agent", "model", "status"}, // status: success|error|malformed
	)

	CompletionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_completion_latency_seconds",
			Help:    "Completion service latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	CompletionTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_completion_tokens_total",
			Help: "Total tokens used by completion calls",
		},
		[]string{"model", "type"}, // type: input|output
	)

	// Search metrics
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_search_requests_total",
			Help: "Total number of search provider requests",
		},
		[]string{"status"},
	)

	// Pipeline metrics
	StageArticles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_stage_articles_total",
			Help: "Articles leaving each pipeline stage",
		},
		[]string{"stage"}, // stage: collected|fetched|classified|filtered|dated|summarized
	)

	ArticleDrops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_article_drops_total",
			Help: "Articles dropped by reason",
		},
		[]string{"reason"},
	)

	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_pipeline_runs_total",
			Help: "Pipeline runs per subject by outcome",
		},
		[]string{"status"},
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_pipeline_duration_seconds",
			Help:    "Duration of one subject's pipeline run",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 2400},
		},
	)

	StoredSummaries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_stored_summaries_total",
			Help: "Summary writes per destination by outcome",
		},
		[]string{"destination", "status"}, // status: stored|duplicate|failed
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CompletionCalls,
			CompletionLatency,
			CompletionTokens,
			SearchRequests,
			StageArticles,
			ArticleDrops,
			PipelineRuns,
			PipelineDuration,
			StoredSummaries,
		)
	})
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCompletion records one completion call
func RecordCompletion(agent, model string, duration time.Duration, status string) {
	CompletionCalls.WithLabelValues(agent, model, status).Inc()
	CompletionLatency.WithLabelValues(agent, model).Observe(duration.Seconds())
}

// RecordTokens records token usage for a model
func RecordTokens(model string, input, output int64) {
	CompletionTokens.WithLabelValues(model, "input").Add(float64(input))
	CompletionTokens.WithLabelValues(model, "output").Add(float64(output))
}

// RecordStage records how many articles left a stage
func RecordStage(stage string, count int) {
	StageArticles.WithLabelValues(stage).Add(float64(count))
}

// RecordDrop records one dropped article
func RecordDrop(reason string) {
	ArticleDrops.WithLabelValues(reason).Inc()
}

// RecordRun records one subject run
func RecordRun(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PipelineRuns.WithLabelValues(status).Inc()
	PipelineDuration.Observe(duration.Seconds())
}
