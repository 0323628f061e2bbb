package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaripple_analyses_total",
			Help: "Water quality analyses by outcome code",
		},
		[]string{"outcome"},
	)

	LocationLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaripple_location_lookups_total",
			Help: "Location lookups by outcome code",
		},
		[]string{"outcome"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aquaripple_stage_duration_seconds",
			Help:    "Latency of each pipeline stage",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaripple_llm_tokens_used_total",
			Help: "Tokens reported by the AI model",
		},
		[]string{"model", "type"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquaripple_location_cache_lookups_total",
			Help: "Water body cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AnalysesTotal)
		prometheus.MustRegister(LocationLookupsTotal)
		prometheus.MustRegister(StageDuration)
		prometheus.MustRegister(LLMTokensUsed)
		prometheus.MustRegister(CacheLookups)
	})
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStage records how long a pipeline stage took since start.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Outcome turns an error classification into a metric label.
func Outcome(code string, err error) string {
	if err == nil {
		return "success"
	}
	if code == "" {
		return "error"
	}
	return code
}
