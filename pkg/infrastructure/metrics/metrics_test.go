package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordItems(t *testing.T) {
	before := testutil.ToFloat64(itemsTotal.WithLabelValues("garmin", "updated"))

	RecordItems("garmin", map[string]int{"updated": 3, "patched": 0})

	assert.Equal(t, before+3, testutil.ToFloat64(itemsTotal.WithLabelValues("garmin", "updated")))
}

func TestRecordRun(t *testing.T) {
	ok := testutil.ToFloat64(runsTotal.WithLabelValues("movescount", "success"))
	failed := testutil.ToFloat64(runsTotal.WithLabelValues("movescount", "failure"))

	RecordRun("movescount", time.Now().Add(-time.Second), nil)
	RecordRun("movescount", time.Now(), errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(runsTotal.WithLabelValues("movescount", "success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(runsTotal.WithLabelValues("movescount", "failure")))
	assert.Greater(t, testutil.ToFloat64(lastSuccess.WithLabelValues("movescount")), 0.0)
}

func TestRecordTypeFixes(t *testing.T) {
	before := testutil.ToFloat64(typeFixesTotal.WithLabelValues("manual"))
	RecordTypeFixes(2, 1, 0)
	assert.Equal(t, before+1, testutil.ToFloat64(typeFixesTotal.WithLabelValues("manual")))
}

func TestPush(t *testing.T) {
	t.Run("empty url is a no-op", func(t *testing.T) {
		assert.NoError(t, Push(t.Context(), "", ""))
	})

	t.Run("pushes to the job path", func(t *testing.T) {
		var path string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		RecordItems("garmin", map[string]int{"updated": 1})
		require.NoError(t, Push(t.Context(), server.URL, "run-1"))
		assert.True(t, strings.HasPrefix(path, "/metrics/job/"+pushJob), path)
		assert.Contains(t, path, "instance/run-1")
	})

	t.Run("gateway error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		assert.Error(t, Push(t.Context(), server.URL, ""))
	})
}
