package common

// Data source identifiers (provenance tags on training rows)
const (
	SourceFair      = "fair_1978"
	SourceGSS       = "gss"
	SourceSelterman = "selterman_2022"
	SourceReinhardt = "reinhardt_2023"
)

// Environment variable keys
const (
	EnvConfigFile      = "CONFIG_FILE"
	EnvDataPath        = "DATA_PATH"
	EnvArtifactPath    = "ARTIFACT_PATH"
	EnvReportPath      = "REPORT_PATH"
	EnvServerPort      = "SERVER_PORT"
	EnvMetricsPort     = "METRICS_PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvTrees           = "TREES"
	EnvMaxDepth        = "MAX_DEPTH"
	EnvMinSamplesSplit = "MIN_SAMPLES_SPLIT"
	EnvMinSamplesLeaf  = "MIN_SAMPLES_LEAF"
	EnvMaxFeatures     = "MAX_FEATURES"
	EnvSeed            = "SEED"
	EnvBalanced        = "BALANCED"
	EnvFolds           = "FOLDS"
	EnvTopK            = "TOP_K"
	EnvFetchTimeout    = "FETCH_TIMEOUT"
	EnvFetchRetries    = "FETCH_RETRIES"
	EnvOSFBaseURL      = "OSF_BASE_URL"
)

// Configuration defaults
const (
	DefaultDataPath        = "data"
	DefaultArtifactPath    = "models/model.json"
	DefaultReportPath      = "models/training_report.json"
	DefaultServerPort      = 8090
	DefaultMetricsPort     = 8080
	DefaultTrees           = 200
	DefaultMaxDepth        = 10
	DefaultMinSamplesSplit = 10
	DefaultMinSamplesLeaf  = 5
	DefaultSeed            = 42
	DefaultFolds           = 5
	DefaultTopK            = 10
	DefaultFetchRetries    = 2
	DefaultOSFBaseURL      = "https://api.osf.io/v2"
)

// Risk band boundaries on the predicted probability
const (
	RiskBandCautionAt  = 0.15
	RiskBandElevatedAt = 0.30
	RiskBandHighAt     = 0.50
)

// Risk band labels
const (
	BandLow      = "low"
	BandCaution  = "caution"
	BandElevated = "elevated"
	BandHigh     = "high"
)

// RiskBand maps a probability to its display band.
func RiskBand(p float64) string {
	switch {
	case p < RiskBandCautionAt:
		return BandLow
	case p < RiskBandElevatedAt:
		return BandCaution
	case p < RiskBandHighAt:
		return BandElevated
	default:
		return BandHigh
	}
}

// Validation constants
const (
	MinTrees       = 1
	MaxTrees       = 5000
	MinDepth       = 1
	MaxDepth       = 64
	MinFolds       = 2
	MaxFolds       = 20
	MinServicePort = 1024
	MaxServicePort = 65535
)
