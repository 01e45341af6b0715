package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"news-analysis/models"
)

const maxNewsLimit = 500

func (h *Handler) GetNews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > maxNewsLimit {
		limit = maxNewsLimit
	}
	minScore, _ := strconv.Atoi(c.DefaultQuery("min_score", "0"))
	subject := c.Query("subject")
	tag := strings.ToLower(strings.TrimSpace(c.Query("tag")))
	dateFrom := c.Query("date_from")

	query := h.db.WithContext(c.Request.Context()).Model(&models.News{})

	if subject != "" {
		query = query.Where("news.subject = ?", subject)
	}
	if minScore > 0 {
		query = query.Where("news.classification_score >= ?", minScore)
	}
	if dateFrom != "" {
		from, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
			return
		}
		query = query.Where("news.published_date >= ?", from)
	}
	if tag != "" {
		query = query.
			Joins("JOIN news_tags ON news_tags.news_id = news.id").
			Joins("JOIN tag ON tag.id = news_tags.tag_id").
			Where("tag.name = ?", tag)
	}

	var news []models.News
	err := query.Preload("Tags").
		Order("news.published_date DESC").
		Order("news.classification_score DESC").
		Limit(limit).
		Find(&news).Error
	if err != nil {
		h.log.Errorw("Failed to list news", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, news)
}

func (h *Handler) GetNewsItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("news_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid news id"})
		return
	}

	var news models.News
	if err := h.db.WithContext(c.Request.Context()).Preload("Tags").First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "News not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, news)
}

type tagCount struct {
	Name  string `json:"name"`
	Total int64  `json:"count"`
}

func (h *Handler) GetStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var total int64
	var highScore int64
	var avgScore float64
	var subjects int64
	var tags int64
	var topTags []tagCount

	err := errors.Join(
		db.Model(&models.News{}).Count(&total).Error,
		// high relevance (10+)
		db.Model(&models.News{}).Where("classification_score >= ?", 10).Count(&highScore).Error,
		db.Model(&models.News{}).Select("COALESCE(AVG(classification_score), 0)").Scan(&avgScore).Error,
		db.Model(&models.News{}).Distinct("subject").Count(&subjects).Error,
		db.Model(&models.Tag{}).Count(&tags).Error,
		db.Table("tag").
			Select("tag.name AS name, COUNT(news_tags.news_id) AS total").
			Joins("JOIN news_tags ON news_tags.tag_id = tag.id").
			Group("tag.name").
			Order("total DESC").
			Limit(10).
			Scan(&topTags).Error,
	)
	if err != nil {
		h.log.Errorw("Failed to compute stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := gin.H{
		"total":      total,
		"high_score": highScore,
		"avg_score":  avgScore,
		"subjects":   subjects,
		"tags":       tags,
		"top_tags":   topTags,
	}

	c.JSON(http.StatusOK, stats)
}
