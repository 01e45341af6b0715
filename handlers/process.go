package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProcessRequest struct {
	Companies    []string `json:"companies" binding:"required,min=1"`
	NumberOfDays int      `json:"number_of_days"`
}

// ProcessNews runs the pipeline for every company in the request, one after
// another. Any failed company turns the response into a 500; the per-company
// results are returned either way.
func (h *Handler) ProcessNews(c *gin.Context) {
	var request ProcessRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.log.Infow("Processing news", "companies", request.Companies, "number_of_days", request.NumberOfDays)

	results, err := h.processor.Process(c.Request.Context(), request.Companies, request.NumberOfDays)
	if err != nil {
		h.log.Errorw("Error processing news", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "An error occurred while processing the news.",
			"results": results,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "results": results})
}
