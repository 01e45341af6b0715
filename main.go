package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"news-analysis/agent"
	"news-analysis/config"
	"news-analysis/database"
	"news-analysis/fetcher"
	"news-analysis/handlers"
	"news-analysis/llm"
	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/pipeline"
	"news-analysis/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer logger.Sync()
	lg := logger.Get().With("app", cfg.App.Name)

	metrics.Init()

	destinations, err := database.Open(cfg.Database.URLs, lg)
	if err != nil {
		lg.Fatalw("Failed to connect to database", "error", err)
	}
	defer database.Close(destinations)

	sites, err := config.LoadSites(cfg.Search.SitesFile)
	if err != nil {
		lg.Fatalw("Failed to load search sites", "error", err)
	}

	completer, err := llm.NewOpenAI(cfg.OpenAI, cfg.OpenAI.Model, lg)
	if err != nil {
		lg.Fatalw("Failed to create OpenAI client", "error", err)
	}
	dateCompleter, err := llm.NewOpenAI(cfg.OpenAI, cfg.OpenAI.DateModel(), lg)
	if err != nil {
		lg.Fatalw("Failed to create OpenAI client for dates", "error", err)
	}

	searchProvider, err := search.NewGoogle(context.Background(), cfg.Search, lg)
	if err != nil {
		lg.Fatalw("Failed to create search client", "error", err)
	}

	registry := agent.Default()
	lg.Infow("Agents registered", "agents", registry.List())
	pageFetcher := fetcher.New(
		fetcher.WithTimeout(cfg.Pipeline.FetchTimeout),
		fetcher.WithUserAgent(cfg.Pipeline.UserAgent),
	)

	p := pipeline.New(pipeline.Stages{
		Planner:     pipeline.NewPlanner(completer, registry, cfg.Pipeline.FallbackThreshold, lg),
		Collector:   pipeline.NewCollector(searchProvider, sites, cfg.Search, lg),
		Acquirer:    pipeline.NewAcquirer(pageFetcher, dateCompleter, registry, cfg.Pipeline.FetchConcurrency, lg),
		Classifier:  pipeline.NewClassifier(completer, registry, lg),
		Synthesizer: pipeline.NewSynthesizer(completer, registry, cfg.Pipeline.SynthesisMaxAttempts, lg),
		Analyst:     pipeline.NewAnalyst(completer),
		Reducer:     pipeline.NewReducer(completer, registry),
	}, lg)

	service := pipeline.NewService(p, database.NewSink(destinations, lg), cfg.Pipeline.DayWindow, lg)

	gin.SetMode(cfg.HTTP.GinMode)
	r := gin.Default()
	handlers.New(destinations[0].DB, service, lg).Register(r)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: r,
	}

	go func() {
		lg.Infow("Starting news analysis server", "addr", srv.Addr, "sites", len(sites), "destinations", len(destinations))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Errorw("Server forced to shutdown", "error", err)
	}
}
