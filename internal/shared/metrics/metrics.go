package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_created_total",
			Help: "Total documents stored, by source",
		},
		[]string{"source"},
	)
	analysisStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_started_total",
			Help: "Total analyses started",
		},
	)
	analysisCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_completed_total",
			Help: "Total analyses completed",
		},
	)
	analysisFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_failed_total",
			Help: "Total analyses failed, by pipeline stage",
		},
		[]string{"stage"},
	)
	ticketsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Total tracker issues created, by source",
		},
		[]string{"source"},
	)
	analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_ms",
			Help:    "Analysis duration in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		},
	)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		documentsCreatedTotal,
		analysisStartedTotal,
		analysisCompletedTotal,
		analysisFailedTotal,
		ticketsCreatedTotal,
		analysisDuration,
	)
}

// IncDocumentCreated increments the stored-documents counter for a source ("upload" or "url").
func IncDocumentCreated(source string) {
	documentsCreatedTotal.WithLabelValues(source).Inc()
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Inc()
}

// IncAnalysisFailed increments the failed counter for a stage.
func IncAnalysisFailed(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	analysisFailedTotal.WithLabelValues(stage).Inc()
}

// IncTicketCreated increments the created-issues counter for a source ("document" or "email").
func IncTicketCreated(source string) {
	ticketsCreatedTotal.WithLabelValues(source).Inc()
}

// ObserveAnalysisDuration records an analysis duration.
func ObserveAnalysisDuration(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	analysisDuration.Observe(ms)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
