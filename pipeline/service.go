package pipeline

import (
	"context"
	"strings"

	"news-analysis/apperrors"
	"news-analysis/logger"
	"news-analysis/models"
)

// Runner runs the pipeline for one subject.
type Runner interface {
	Run(ctx context.Context, subject string, days int) (*Result, error)
}

// Sink durably stores a run's summaries.
type Sink interface {
	Store(ctx context.Context, subject string, summaries []models.Summary) models.StoreReport
}

// SubjectReport is the per-subject outcome of Process.
type SubjectReport struct {
	Subject   string `json:"subject"`
	RunID     string `json:"run_id,omitempty"`
	Summaries int    `json:"summaries"`
	models.StoreReport
	Error string `json:"error,omitempty"`
}

// Service processes a list of subjects one after another.
type Service struct {
	runner      Runner
	sink        Sink
	defaultDays int
	log         *logger.Logger
}

func NewService(runner Runner, sink Sink, defaultDays int, log *logger.Logger) *Service {
	return &Service{
		runner:      runner,
		sink:        sink,
		defaultDays: defaultDays,
		log:         log.With("component", "service"),
	}
}

// Process runs every subject sequentially and stores its summaries. A failed
// subject does not stop the others; all failures are returned together as
// SubjectErrors. days <= 0 uses the configured window.
func (s *Service) Process(ctx context.Context, subjects []string, days int) ([]SubjectReport, error) {
	if days <= 0 {
		days = s.defaultDays
	}

	var errs apperrors.MultiError
	reports := make([]SubjectReport, 0, len(subjects))

	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		report := SubjectReport{Subject: subject}

		if subject == "" {
			err := &apperrors.SubjectError{Subject: subject, Err: apperrors.Wrap(apperrors.ErrInvalidInput, "empty subject")}
			report.Error = err.Error()
			reports = append(reports, report)
			errs.Add(err)
			continue
		}

		if err := ctx.Err(); err != nil {
			report.Error = err.Error()
			reports = append(reports, report)
			errs.Add(&apperrors.SubjectError{Subject: subject, Err: err})
			continue
		}

		res, err := s.runner.Run(ctx, subject, days)
		if err != nil {
			s.log.Errorw("Error processing news", "subject", subject, "error", err)
			report.Error = err.Error()
			reports = append(reports, report)
			errs.Add(&apperrors.SubjectError{Subject: subject, Err: err})
			continue
		}

		report.RunID = res.RunID
		report.Summaries = len(res.Summaries)
		if len(res.Summaries) > 0 {
			report.StoreReport = s.sink.Store(ctx, subject, res.Summaries)
		}

		s.log.Infow("Subject processed",
			"subject", subject,
			"run_id", res.RunID,
			"summaries", report.Summaries,
			"stored", report.Stored,
			"duplicates", report.Duplicates,
			"failed", report.Failed)
		reports = append(reports, report)
	}

	return reports, errs.ToError()
}
