package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "norms_conversions_total",
		Help: "Score conversions, by overall convention.",
	}, []string{"convention"})

	Unresolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "norms_unresolved_lookups_total",
		Help: "Requested sums with no entry in the merged table, by index.",
	}, []string{"index"})

	FallbackIntervals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "norms_fallback_intervals_total",
		Help: "Intervals synthesized by the fallback rule, by index.",
	}, []string{"index"})

	TableWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "norms_table_load_warnings_total",
		Help: "Table definitions or rows skipped at load.",
	})

	Bands = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "norms_bands_loaded",
		Help: "Normative bands held by the table store.",
	})
)
