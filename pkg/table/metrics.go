package table

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	selectionRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_selection_runs_total",
		Help: "Select-count runs by outcome",
	}, []string{"outcome"}) // "noop", "complete", "short"

	selectionPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_selection_pages_fetched_total",
		Help: "Pages requested by select-count runs",
	})

	selectedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "artic_selected_rows",
		Help: "Number of rows currently selected",
	})

	pageLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_page_loads_total",
		Help: "Displayed page loads by outcome",
	}, []string{"outcome"}) // "ok", "failed", "stale"
)
