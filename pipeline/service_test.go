package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-analysis/apperrors"
	"news-analysis/models"
)

type fakeRunner struct {
	fail  map[string]error
	days  []int
	order []string
}

func (r *fakeRunner) Run(ctx context.Context, subject string, days int) (*Result, error) {
	r.order = append(r.order, subject)
	r.days = append(r.days, days)
	if err := r.fail[subject]; err != nil {
		return nil, err
	}
	return &Result{
		RunID:     "run-" + subject,
		Subject:   subject,
		Summaries: []models.Summary{{URL: "https://" + subject + "/1"}, {URL: "https://" + subject + "/2"}},
	}, nil
}

type fakeSink struct {
	stored map[string]int
}

func (s *fakeSink) Store(ctx context.Context, subject string, summaries []models.Summary) models.StoreReport {
	if s.stored == nil {
		s.stored = map[string]int{}
	}
	s.stored[subject] += len(summaries)
	return models.StoreReport{Stored: len(summaries) - 1, Duplicates: 1}
}

func TestProcessAllSubjects(t *testing.T) {
	runner := &fakeRunner{}
	sink := &fakeSink{}
	svc := NewService(runner, sink, 7, testLogger())

	reports, err := svc.Process(context.Background(), []string{"Tesla", " Acme "}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tesla", "Acme"}, runner.order)
	assert.Equal(t, []int{7, 7}, runner.days, "non-positive days use the configured window")
	require.Len(t, reports, 2)
	assert.Equal(t, SubjectReport{
		Subject:     "Tesla",
		RunID:       "run-Tesla",
		Summaries:   2,
		StoreReport: models.StoreReport{Stored: 1, Duplicates: 1},
	}, reports[0])
	assert.Equal(t, 2, sink.stored["Acme"])
}

func TestProcessContinuesAfterSubjectFailure(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{
		"Broken": apperrors.Wrap(apperrors.ErrSynthesis, "expand agents"),
	}}
	sink := &fakeSink{}
	svc := NewService(runner, sink, 7, testLogger())

	reports, err := svc.Process(context.Background(), []string{"Broken", "Tesla", ""}, 3)
	require.Error(t, err)

	assert.Equal(t, []string{"Broken", "Tesla"}, runner.order)
	assert.Equal(t, []int{3, 3}, runner.days)
	require.Len(t, reports, 3)
	assert.NotEmpty(t, reports[0].Error)
	assert.Empty(t, reports[1].Error)
	assert.Equal(t, 2, reports[1].Summaries)
	assert.NotEmpty(t, reports[2].Error)

	var subjectErr *apperrors.SubjectError
	require.True(t, errors.As(err, &subjectErr))
	assert.Equal(t, "Broken", subjectErr.Subject)
	assert.True(t, errors.Is(err, apperrors.ErrSynthesis))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, stored := sink.stored["Broken"]
	assert.False(t, stored)
}
