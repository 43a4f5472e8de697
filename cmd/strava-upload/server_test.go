package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

type fakeSyncer struct {
	runs    []activity.Source
	runErr  error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeSyncer) Run(_ context.Context, src activity.Source, _ string) (*stravasync.Report, error) {
	f.runs = append(f.runs, src)
	if f.block != nil {
		close(f.started)
		<-f.block
	}
	report := &stravasync.Report{Items: []*stravasync.ItemResult{{SourceID: "1", Outcome: stravasync.OutcomeUpdated}}}
	return report, f.runErr
}

func (f *fakeSyncer) FixTypes(context.Context) (*stravasync.FixReport, error) {
	return &stravasync.FixReport{Checked: 3, Fixed: []int64{7}}, nil
}

func testRouter(f *fakeSyncer) http.Handler {
	return newRouter(newServer(f, slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestServer_Sync(t *testing.T) {
	f := &fakeSyncer{}
	rec := httptest.NewRecorder()
	testRouter(f).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/garmin", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []activity.Source{activity.SourceGarminConnect}, f.runs)

	var body struct {
		RunID  string         `json:"run_id"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.RunID)
	assert.Equal(t, 1, body.Counts["updated"])
}

func TestServer_SyncErrors(t *testing.T) {
	t.Run("unknown source", func(t *testing.T) {
		rec := httptest.NewRecorder()
		testRouter(&fakeSyncer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/polar", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("run failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		testRouter(&fakeSyncer{runErr: errors.New("boom")}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/movescount", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "boom")
	})

	t.Run("get not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		testRouter(&fakeSyncer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync/movescount", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestServer_RejectsConcurrentRun(t *testing.T) {
	f := &fakeSyncer{block: make(chan struct{}), started: make(chan struct{})}
	router := testRouter(f)

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/movescount", nil))
		done <- rec.Code
	}()
	<-f.started

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fix-types", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(f.block)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestServer_FixTypesAndProbes(t *testing.T) {
	router := testRouter(&fakeSyncer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fix-types", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"checked":3`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
