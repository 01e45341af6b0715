package models

import "time"

// News is one stored summary, unique by Link.
type News struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	Subject             string    `json:"subject" gorm:"index"`
	ClassificationScore int       `json:"classification_score"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary" gorm:"type:text"`
	Link                string    `json:"link" gorm:"uniqueIndex;not null"`
	PublishedDate       time.Time `json:"published_date" gorm:"type:date;index"`
	CreatedAt           time.Time `json:"created_at"`
	Tags                []Tag     `json:"tags" gorm:"many2many:news_tags;"`
}

func (News) TableName() string { return "news" }

// Tag is a normalized (trimmed, lower-cased) label shared between news rows.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (Tag) TableName() string { return "tag" }

// StoreReport counts the outcome of writing a batch of summaries.
type StoreReport struct {
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Add accumulates other into r.
func (r *StoreReport) Add(other StoreReport) {
	r.Stored += other.Stored
	r.Duplicates += other.Duplicates
	r.Failed += other.Failed
}
