package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts ingestion runs by final status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newshub",
			Name:      "ingest_runs_total",
			Help:      "Total number of ingestion runs",
		},
		[]string{"status"},
	)

	// FetchesTotal counts adapter calls by source and outcome.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newshub",
			Name:      "fetches_total",
			Help:      "Total number of adapter fetches",
		},
		[]string{"source", "outcome"},
	)

	// ArticlesStoredTotal counts newly stored articles.
	ArticlesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newshub",
			Name:      "articles_stored_total",
			Help:      "Total number of newly stored articles",
		},
		[]string{"source"},
	)

	// PersistenceErrorsTotal counts per-article write failures.
	PersistenceErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newshub",
			Name:      "persistence_errors_total",
			Help:      "Total number of article writes that failed",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newshub",
			Name:      "ingest_run_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)
