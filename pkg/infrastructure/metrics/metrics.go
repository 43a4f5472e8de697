// Package metrics holds the Prometheus collectors for sync runs. Batch runs
// push them to a Pushgateway; the serve mode exposes Registry on /metrics.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "strava_upload"
	pushJob   = "strava_upload_sync"
)

// Registry holds only this service's collectors, so pushes carry no Go runtime noise.
var Registry = prometheus.NewRegistry()

var (
	itemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "items_total",
		Help:      "Local activities processed, by source and outcome.",
	}, []string{"source", "outcome"})

	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Sync runs, by source and result.",
	}, []string{"source", "result"})

	runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a sync run.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"source"})

	lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful run.",
	}, []string{"source"})

	typeFixesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fix_types",
		Name:      "activities_total",
		Help:      "Workout activities inspected by the type fix-up, by result.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(itemsTotal, runsTotal, runDuration, lastSuccess, typeFixesTotal)
}

// RecordItems adds per-outcome item counts for source.
func RecordItems(source string, counts map[string]int) {
	for outcome, n := range counts {
		if n <= 0 {
			continue
		}
		itemsTotal.WithLabelValues(source, outcome).Add(float64(n))
	}
}

// RecordRun records the result and duration of one run.
func RecordRun(source string, started time.Time, runErr error) {
	result := "success"
	if runErr != nil {
		result = "failure"
	}
	runsTotal.WithLabelValues(source, result).Inc()
	runDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if runErr == nil {
		lastSuccess.WithLabelValues(source).Set(float64(time.Now().Unix()))
	}
}

// RecordTypeFixes records the outcome of a type fix-up pass.
func RecordTypeFixes(fixed, manual, unparsed int) {
	typeFixesTotal.WithLabelValues("fixed").Add(float64(fixed))
	typeFixesTotal.WithLabelValues("manual").Add(float64(manual))
	typeFixesTotal.WithLabelValues("unparsed").Add(float64(unparsed))
}

// Push sends Registry to the Pushgateway at url. An empty url is a no-op.
func Push(ctx context.Context, url, instance string) error {
	if url == "" {
		return nil
	}
	pusher := push.New(url, pushJob).Gatherer(Registry)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
