package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the import pipeline.
type Metrics struct {
	// Import metrics
	ImportRuns        *prometheus.CounterVec
	RowsCreated       prometheus.Counter
	RowsUpdated       prometheus.Counter
	DuplicatesClaimed prometheus.Counter

	// Suggestion metrics
	SuggestionsStored prometheus.Counter
}

// New creates and registers all metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImportRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_runs_total",
				Help: "Total number of finished import runs by status",
			},
			[]string{"status"},
		),
		RowsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "import_rows_created_total",
				Help: "Total number of new entries created by imports",
			},
		),
		RowsUpdated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "import_rows_updated_total",
				Help: "Total number of existing entries updated by imports",
			},
		),
		DuplicatesClaimed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "import_duplicates_claimed_total",
				Help: "Total number of existing entries claimed as duplicates",
			},
		),
		SuggestionsStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "category_suggestions_stored_total",
				Help: "Total number of category suggestions stored on transactions",
			},
		),
	}

	reg.MustRegister(
		m.ImportRuns,
		m.RowsCreated,
		m.RowsUpdated,
		m.DuplicatesClaimed,
		m.SuggestionsStored,
	)

	return m
}
