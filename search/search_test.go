package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-analysis/apperrors"
	"news-analysis/config"
	"news-analysis/logger"
)

func testQuery() Query {
	return Query{
		Terms: "Energy Storage news New York",
		Site:  config.Site{Domain: "powermag.com/", Exclude: []string{"powermag.com/category/", "powermag.com/tag/"}},
		From:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestQueryString(t *testing.T) {
	q := testQuery()
	assert.Equal(t, "Energy Storage news New York site:powermag.com/ -inurl:powermag.com/category/ -inurl:powermag.com/tag/", q.String())
	assert.Equal(t, "date:r:20240501:20240508", q.DateRange())

	q.Site.Exclude = nil
	assert.Equal(t, "Energy Storage news New York site:powermag.com/", q.String())
}

func newTestGoogle(t *testing.T, url string) *Google {
	t.Helper()
	g, err := NewGoogle(context.Background(), config.SearchConfig{APIKey: "key-1", EngineID: "cx-1", EngineURL: url + "/"}, logger.Nop())
	require.NoError(t, err)
	return g
}

func TestGoogleQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		params := r.URL.Query()
		assert.Equal(t, testQuery().String(), params.Get("q"))
		assert.Equal(t, "key-1", params.Get("key"))
		assert.Equal(t, "cx-1", params.Get("cx"))
		assert.Equal(t, "date:r:20240501:20240508", params.Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": [{"link": "https://powermag.com/a", "title": "A"}, {"title": "no link"}, {"link": "https://powermag.com/b"}]}`)
	}))
	defer srv.Close()

	results, err := newTestGoogle(t, srv.URL).Query(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Link: "https://powermag.com/a", Title: "A"}, results[0])
	assert.Equal(t, "https://powermag.com/b", results[1].Link)
}

func TestGoogleQueryNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"searchInformation": {"totalResults": "0"}}`)
	}))
	defer srv.Close()

	results, err := newTestGoogle(t, srv.URL).Query(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGoogleQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"quota exceeded", http.StatusTooManyRequests, `{"error": {"code": 429, "message": "quota"}}`},
		{"bad request", http.StatusBadRequest, `{"error": {"code": 400, "message": "bad"}}`},
		{"invalid json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestGoogle(t, srv.URL).Query(context.Background(), testQuery())
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrExternal))
		})
	}
}

func TestGoogleQueryCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGoogle(t, srv.URL).Query(ctx, testQuery())
	assert.ErrorIs(t, err, context.Canceled)
}
