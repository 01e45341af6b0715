package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/pipeline"
)

// Processor runs the news pipeline for a list of subjects.
type Processor interface {
	Process(ctx context.Context, subjects []string, days int) ([]pipeline.SubjectReport, error)
}

// Handler serves the HTTP API.
type Handler struct {
	db        *gorm.DB
	processor Processor
	log       *logger.Logger
}

// New creates a Handler. db backs the read endpoints.
func New(db *gorm.DB, processor Processor, log *logger.Logger) *Handler {
	return &Handler{db: db, processor: processor, log: log.With("component", "http")}
}

// Register mounts all routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Health)
	r.POST("/process-news", h.ProcessNews)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/news", h.GetNews)
		api.GET("/news/:news_id", h.GetNewsItem)
		api.GET("/stats", h.GetStats)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "API is running!"})
}
