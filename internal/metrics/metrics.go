// Package metrics provides Prometheus metrics collection for the risk
// prediction service. It defines and manages the serving, training, and data
// pipeline metrics that are exposed via the Prometheus metrics endpoint for
// monitoring and alerting.
//
// The package includes metrics for prediction requests, attribution latency,
// risk band distribution, dataset fetches, and general system health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the prediction service.
// It provides counters, gauges, and histograms for comprehensive monitoring
// of serving, training, and data fetch operations.
type Metrics struct {
	// Serving metrics
	PredictionsTotal  prometheus.Counter     // Total number of predictions served
	PredictionErrors  prometheus.Counter     // Total number of rejected or failed predictions
	PredictionLatency prometheus.Histogram   // End-to-end scoring latency in seconds
	PredictionScores  prometheus.Histogram   // Distribution of predicted probabilities
	RiskBands         *prometheus.CounterVec // Predictions served per risk band
	ModelLoaded       prometheus.Gauge       // 1 when a model artifact is resident, 0 otherwise
	ModelAge          prometheus.Gauge       // Age of the loaded model artifact in seconds

	// Data pipeline metrics
	FetchesTotal  *prometheus.CounterVec // Dataset fetches per source
	FetchFailures *prometheus.CounterVec // Failed dataset fetches per source
	SourceRows    *prometheus.GaugeVec   // Stored training rows per source

	// Training metrics
	TrainingsTotal   prometheus.Counter   // Total number of training runs
	TrainingDuration prometheus.Histogram // Wall-clock training duration in seconds
	TrainingAUC      prometheus.Gauge     // Cross-validated mean AUC of the last training run

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served",
		}),
		PredictionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_errors_total",
			Help: "Total number of rejected or failed predictions",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end scoring latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of predicted probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		RiskBands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_bands_total",
			Help: "Predictions served per risk band",
		}, []string{"band"}),
		ModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "1 when a model artifact is resident, 0 otherwise",
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fetches_total",
			Help: "Dataset fetches per source",
		}, []string{"source"}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fetch_failures_total",
			Help: "Failed dataset fetches per source",
		}, []string{"source"}),
		SourceRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "source_rows",
			Help: "Stored training rows per source",
		}, []string{"source"}),
		TrainingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "trainings_total",
			Help: "Total number of training runs",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Wall-clock training duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		TrainingAUC: factory.NewGauge(prometheus.GaugeOpts{
			Name: "training_auc",
			Help: "Cross-validated mean AUC of the last training run",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}

// UpdateSourceRows updates the per-source row gauges from stored counts.
func (m *Metrics) UpdateSourceRows(counts map[string]int) {
	for source, n := range counts {
		m.SourceRows.WithLabelValues(source).Set(float64(n))
	}
}

// GetErrorRate calculates the current error rate based on served predictions
// and errors. Returns the ratio of errors to predictions, or 0 if nothing has
// been recorded. This is useful for health reporting.
func (m *Metrics) GetErrorRate() float64 {
	return errorRateFrom(prometheus.DefaultGatherer)
}

func errorRateFrom(g prometheus.Gatherer) float64 {
	var totalOps, totalErrors float64

	// Get metric values from registry
	metricFamilies, err := g.Gather()
	if err != nil {
		return 0
	}

	for _, mf := range metricFamilies {
		switch *mf.Name {
		case "predictions_total":
			for _, m := range mf.Metric {
				totalOps = *m.Counter.Value
			}
		case "prediction_errors_total":
			for _, m := range mf.Metric {
				totalErrors = *m.Counter.Value
			}
		}
	}

	// Avoid division by zero
	if totalOps == 0 {
		return 0
	}

	return totalErrors / totalOps
}
