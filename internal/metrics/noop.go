package metrics

// Recorder is the narrow recording surface the server and the training
// pipeline depend on, satisfied by MetricsWrapper and by the no-op below.
type Recorder interface {
	PredictionsInc()
	PredictionErrorsInc()
	PredictionLatencyObserve(seconds float64)
	PredictionScoresObserve(p float64)
	RiskBandInc(band string)
	ModelLoadedSet(v float64)
	ModelAgeSet(seconds float64)
	FetchInc(source string)
	FetchFailureInc(source string)
	TrainingsInc()
	TrainingDurationObserve(seconds float64)
	TrainingAUCSet(auc float64)
	ErrorsInc()
	UpdateSourceRows(counts map[string]int)
}

var _ Recorder = (*MetricsWrapper)(nil)
var _ Recorder = NoopRecorder{}

// NoopRecorder discards every sample. Offline binaries that do not expose a
// metrics endpoint use it in place of the prometheus-backed wrapper.
type NoopRecorder struct{}

func Noop() NoopRecorder { return NoopRecorder{} }

func (NoopRecorder) PredictionsInc()                  {}
func (NoopRecorder) PredictionErrorsInc()             {}
func (NoopRecorder) PredictionLatencyObserve(float64) {}
func (NoopRecorder) PredictionScoresObserve(float64)  {}
func (NoopRecorder) RiskBandInc(string)               {}
func (NoopRecorder) ModelLoadedSet(float64)           {}
func (NoopRecorder) ModelAgeSet(float64)              {}
func (NoopRecorder) FetchInc(string)                  {}
func (NoopRecorder) FetchFailureInc(string)           {}
func (NoopRecorder) TrainingsInc()                    {}
func (NoopRecorder) TrainingDurationObserve(float64)  {}
func (NoopRecorder) TrainingAUCSet(float64)           {}
func (NoopRecorder) ErrorsInc()                       {}
func (NoopRecorder) UpdateSourceRows(map[string]int)  {}
