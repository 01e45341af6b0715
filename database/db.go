package database

import (
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"news-analysis/apperrors"
	"news-analysis/logger"
	"news-analysis/models"
)

// Destination is one database summaries are written to.
type Destination struct {
	Name string
	DB   *gorm.DB
}

// Open connects to every URL and migrates the schema. postgres:// and
// postgresql:// URLs use postgres; sqlite://path, file: URIs and bare paths
// use sqlite.
func Open(urls []string, log *logger.Logger) ([]Destination, error) {
	if len(urls) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "no database URL")
	}

	destinations := make([]Destination, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		dialector, err := dialectorFor(raw)
		if err != nil {
			closeAll(destinations)
			return nil, err
		}

		db, err := gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			closeAll(destinations)
			return nil, apperrors.Wrapf(err, "failed to connect to database %s", Redact(raw))
		}

		if err := Migrate(db); err != nil {
			closeAll(destinations)
			return nil, apperrors.Wrapf(err, "failed to migrate database %s", Redact(raw))
		}

		log.Infow("Database connected successfully", "database", Redact(raw), "dialect", db.Dialector.Name())
		destinations = append(destinations, Destination{Name: Redact(raw), DB: db})
	}

	if len(destinations) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "no database URL")
	}
	return destinations, nil
}

// Migrate creates or updates the news and tag tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Tag{}, &models.News{})
}

// Close closes the underlying connection pools.
func Close(destinations []Destination) {
	closeAll(destinations)
}

func closeAll(destinations []Destination) {
	for _, d := range destinations {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func dialectorFor(raw string) (gorm.Dialector, error) {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Open(raw), nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqlite.Open(raw[len("sqlite://"):]), nil
	case strings.HasPrefix(lower, "file:"):
		return sqlite.Open(raw), nil
	case strings.Contains(raw, "://"):
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unsupported database URL %s", Redact(raw))
	default:
		return sqlite.Open(raw), nil
	}
}

// Redact hides the password of a database URL.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
