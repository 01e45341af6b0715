package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"news-analysis/apperrors"
	"news-analysis/logger"
	"news-analysis/metrics"
	"news-analysis/models"
)

// Sink writes summaries to every destination, one transaction per summary.
type Sink struct {
	destinations []Destination
	log          *logger.Logger
}

func NewSink(destinations []Destination, log *logger.Logger) *Sink {
	return &Sink{destinations: destinations, log: log.With("component", "sink")}
}

// Store writes each summary to each destination. A duplicate link or a failed
// write rolls back that summary only. The report sums all destinations.
func (s *Sink) Store(ctx context.Context, subject string, summaries []models.Summary) models.StoreReport {
	var total models.StoreReport
	for _, d := range s.destinations {
		total.Add(s.storeTo(ctx, d, subject, summaries))
	}
	return total
}

func (s *Sink) storeTo(ctx context.Context, d Destination, subject string, summaries []models.Summary) models.StoreReport {
	var report models.StoreReport
	for _, summary := range summaries {
		s.log.Infow("Adding summary to database", "database", d.Name, "link", summary.URL)

		err := SaveSummary(ctx, d.DB, subject, summary)
		switch {
		case err == nil:
			report.Stored++
			metrics.StoredSummaries.WithLabelValues(d.Name, "stored").Inc()
		case errors.Is(err, apperrors.ErrDuplicate):
			report.Duplicates++
			metrics.StoredSummaries.WithLabelValues(d.Name, "duplicate").Inc()
			s.log.Infow("Link already exists in the database", "database", d.Name, "link", summary.URL)
		default:
			report.Failed++
			metrics.StoredSummaries.WithLabelValues(d.Name, "failed").Inc()
			s.log.Errorw("Database error", "database", d.Name, "link", summary.URL, "error", err)
		}
	}
	return report
}

// SaveSummary stores one summary and its tags in a single transaction.
// An existing link yields ErrDuplicate; any other failure ErrPersistence.
func SaveSummary(ctx context.Context, db *gorm.DB, subject string, summary models.Summary) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.News{}).Where("link = ?", summary.URL).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.ErrDuplicate
		}

		tags, err := findOrCreateTags(tx, summary.Tags)
		if err != nil {
			return err
		}

		news := models.News{
			Subject:             subject,
			ClassificationScore: summary.Score,
			Title:               summary.Title,
			Summary:             summary.Summary,
			Link:                summary.URL,
			PublishedDate:       summary.PublishedDate,
			Tags:                tags,
		}
		return tx.Omit("Tags.*").Create(&news).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrapf(apperrors.ErrDuplicate, "link %s", summary.URL)
	default:
		return apperrors.Mark(apperrors.ErrPersistence, err, "save %s", summary.URL)
	}
}

// NormalizeTag trims and lower-cases a tag name.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func findOrCreateTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))

	for _, name := range names {
		normalized := NormalizeTag(name)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		var tag models.Tag
		if err := tx.Where(models.Tag{Name: normalized}).FirstOrCreate(&tag).Error; err != nil {
			return nil, apperrors.Wrapf(err, "tag %q", normalized)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
