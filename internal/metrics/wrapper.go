package metrics

import "github.com/prometheus/client_golang/prometheus"

// Interfaces for metrics to avoid circular imports
type MetricsCounter interface {
	Inc()
}

type MetricsGauge interface {
	Set(float64)
	Add(float64)
}

type MetricsHistogram interface {
	Observe(float64)
}

// MetricsWrapper provides a simple interface for the server and the training
// pipeline to record metrics without depending on prometheus types.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) PredictionsTotal() MetricsCounter {
	return &CounterWrapper{w.m.PredictionsTotal}
}

func (w *MetricsWrapper) ModelAge() MetricsGauge {
	return &GaugeWrapper{w.m.ModelAge}
}

func (w *MetricsWrapper) PredictionLatency() MetricsHistogram {
	return &HistogramWrapper{w.m.PredictionLatency}
}

func (w *MetricsWrapper) PredictionsInc() {
	w.m.PredictionsTotal.Inc()
}

func (w *MetricsWrapper) PredictionErrorsInc() {
	w.m.PredictionErrors.Inc()
}

func (w *MetricsWrapper) PredictionLatencyObserve(seconds float64) {
	w.m.PredictionLatency.Observe(seconds)
}

func (w *MetricsWrapper) PredictionScoresObserve(p float64) {
	w.m.PredictionScores.Observe(p)
}

func (w *MetricsWrapper) RiskBandInc(band string) {
	w.m.RiskBands.WithLabelValues(band).Inc()
}

func (w *MetricsWrapper) ModelLoadedSet(v float64) {
	w.m.ModelLoaded.Set(v)
}

func (w *MetricsWrapper) ModelAgeSet(seconds float64) {
	w.m.ModelAge.Set(seconds)
}

func (w *MetricsWrapper) FetchInc(source string) {
	w.m.FetchesTotal.WithLabelValues(source).Inc()
}

func (w *MetricsWrapper) FetchFailureInc(source string) {
	w.m.FetchFailures.WithLabelValues(source).Inc()
}

func (w *MetricsWrapper) TrainingsInc() {
	w.m.TrainingsTotal.Inc()
}

func (w *MetricsWrapper) TrainingDurationObserve(seconds float64) {
	w.m.TrainingDuration.Observe(seconds)
}

func (w *MetricsWrapper) TrainingAUCSet(auc float64) {
	w.m.TrainingAUC.Set(auc)
}

func (w *MetricsWrapper) ErrorsInc() {
	w.m.ErrorsTotal.Inc()
}

func (w *MetricsWrapper) UpdateSourceRows(counts map[string]int) {
	w.m.UpdateSourceRows(counts)
}

type CounterWrapper struct {
	c prometheus.Counter
}

func (cw *CounterWrapper) Inc() {
	cw.c.Inc()
}

type GaugeWrapper struct {
	g prometheus.Gauge
}

func (gw *GaugeWrapper) Set(v float64) {
	gw.g.Set(v)
}

func (gw *GaugeWrapper) Add(v float64) {
	gw.g.Add(v)
}

type HistogramWrapper struct {
	h prometheus.Histogram
}

func (hw *HistogramWrapper) Observe(v float64) {
	hw.h.Observe(v)
}
