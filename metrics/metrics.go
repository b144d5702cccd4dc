package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_recorded_total",
		Help: "Game sessions written to the record store",
	})

	ResponsesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_responses_recorded_total",
		Help: "Individual responses written to the record store",
	})

	RecordErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_record_errors_total",
		Help: "Failures while recording a session, by stage",
	}, []string{"stage"})

	AnalysisBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quiz_analysis_build_duration_seconds",
		Help:    "Time to fetch the history and rebuild the analysis report",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	})

	AnalysisCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_analysis_cache_lookups_total",
		Help: "Analysis report cache lookups by result",
	}, []string{"result"})

	AnalysisSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quiz_analysis_sessions",
		Help: "Sessions covered by the latest analysis report",
	})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_exports_total",
		Help: "Analysis exports served, by format",
	}, []string{"format"})
)
