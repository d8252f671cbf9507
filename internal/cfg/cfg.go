package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"affair-radar/internal/common"
	"affair-radar/internal/features"
	"affair-radar/internal/model"
)

type Settings struct {
	DataPath        string
	ArtifactPath    string
	ReportPath      string
	ServerPort      int
	MetricsPort     int
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Seed            int64
	Balanced        bool
	Folds           int
	TopK            int
	OSFBaseURL      string
	FetchTimeout    time.Duration
	FetchRetries    int
	LogLevel        string
}

type ConfigFile struct {
	Model struct {
		Trees           int    `yaml:"trees"`
		MaxDepth        int    `yaml:"maxDepth"`
		MinSamplesSplit int    `yaml:"minSamplesSplit"`
		MinSamplesLeaf  int    `yaml:"minSamplesLeaf"`
		MaxFeatures     int    `yaml:"maxFeatures"`
		Seed            int64  `yaml:"seed"`
		Balanced        *bool  `yaml:"balanced"`
		ArtifactPath    string `yaml:"artifactPath"`
	} `yaml:"model"`

	Training struct {
		Folds      int    `yaml:"folds"`
		ReportPath string `yaml:"reportPath"`
	} `yaml:"training"`

	Serving struct {
		Port int `yaml:"port"`
		TopK int `yaml:"topK"`
	} `yaml:"serving"`

	Data struct {
		Path         string `yaml:"path"`
		OSFBaseURL   string `yaml:"osfBaseURL"`
		FetchTimeout string `yaml:"fetchTimeout"`
		FetchRetries int    `yaml:"fetchRetries"`
	} `yaml:"data"`

	System struct {
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse durations
	fetchTimeout, err := time.ParseDuration(config.Data.FetchTimeout)
	if err != nil {
		fetchTimeout = 30 * time.Second
	}

	// Balanced defaults to true, so absence and an explicit false must differ
	balanced := true
	if config.Model.Balanced != nil {
		balanced = *config.Model.Balanced
	}

	// Override with environment variables if they exist
	settings := Settings{
		DataPath:        getStringFromEnvOrConfig(common.EnvDataPath, config.Data.Path, common.DefaultDataPath),
		ArtifactPath:    getStringFromEnvOrConfig(common.EnvArtifactPath, config.Model.ArtifactPath, common.DefaultArtifactPath),
		ReportPath:      getStringFromEnvOrConfig(common.EnvReportPath, config.Training.ReportPath, common.DefaultReportPath),
		ServerPort:      getIntFromEnvOrConfig(common.EnvServerPort, config.Serving.Port, common.DefaultServerPort),
		MetricsPort:     getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort, common.DefaultMetricsPort),
		Trees:           getIntFromEnvOrConfig(common.EnvTrees, config.Model.Trees, common.DefaultTrees),
		MaxDepth:        getIntFromEnvOrConfig(common.EnvMaxDepth, config.Model.MaxDepth, common.DefaultMaxDepth),
		MinSamplesSplit: getIntFromEnvOrConfig(common.EnvMinSamplesSplit, config.Model.MinSamplesSplit, common.DefaultMinSamplesSplit),
		MinSamplesLeaf:  getIntFromEnvOrConfig(common.EnvMinSamplesLeaf, config.Model.MinSamplesLeaf, common.DefaultMinSamplesLeaf),
		MaxFeatures:     getIntFromEnvOrConfig(common.EnvMaxFeatures, config.Model.MaxFeatures, 0),
		Seed:            getInt64FromEnvOrConfig(common.EnvSeed, config.Model.Seed, common.DefaultSeed),
		Balanced:        getBoolOrDefault(common.EnvBalanced, balanced),
		Folds:           getIntFromEnvOrConfig(common.EnvFolds, config.Training.Folds, common.DefaultFolds),
		TopK:            getIntFromEnvOrConfig(common.EnvTopK, config.Serving.TopK, common.DefaultTopK),
		OSFBaseURL:      getStringFromEnvOrConfig(common.EnvOSFBaseURL, config.Data.OSFBaseURL, common.DefaultOSFBaseURL),
		FetchTimeout:    getDurationOrDefault(common.EnvFetchTimeout, fetchTimeout),
		FetchRetries:    getIntFromEnvOrConfig(common.EnvFetchRetries, config.Data.FetchRetries, common.DefaultFetchRetries),
		LogLevel:        getStringFromEnvOrConfig(common.EnvLogLevel, config.System.LogLevel, "info"),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataPath:        getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
		ArtifactPath:    getEnvOrDefault(common.EnvArtifactPath, common.DefaultArtifactPath),
		ReportPath:      getEnvOrDefault(common.EnvReportPath, common.DefaultReportPath),
		ServerPort:      getIntOrDefault(common.EnvServerPort, common.DefaultServerPort),
		MetricsPort:     getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		Trees:           getIntOrDefault(common.EnvTrees, common.DefaultTrees),
		MaxDepth:        getIntOrDefault(common.EnvMaxDepth, common.DefaultMaxDepth),
		MinSamplesSplit: getIntOrDefault(common.EnvMinSamplesSplit, common.DefaultMinSamplesSplit),
		MinSamplesLeaf:  getIntOrDefault(common.EnvMinSamplesLeaf, common.DefaultMinSamplesLeaf),
		MaxFeatures:     getIntOrDefault(common.EnvMaxFeatures, 0), // 0 selects sqrt of the schema width
		Seed:            getInt64OrDefault(common.EnvSeed, common.DefaultSeed),
		Balanced:        getBoolOrDefault(common.EnvBalanced, true),
		Folds:           getIntOrDefault(common.EnvFolds, common.DefaultFolds),
		TopK:            getIntOrDefault(common.EnvTopK, common.DefaultTopK),
		OSFBaseURL:      getEnvOrDefault(common.EnvOSFBaseURL, common.DefaultOSFBaseURL),
		FetchTimeout:    getDurationOrDefault(common.EnvFetchTimeout, 30*time.Second),
		FetchRetries:    getIntOrDefault(common.EnvFetchRetries, common.DefaultFetchRetries),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, "info"),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// ModelConfig assembles the ensemble hyperparameters from the flat settings
func (s *Settings) ModelConfig() model.Config {
	return model.Config{
		Trees:           s.Trees,
		MaxDepth:        s.MaxDepth,
		MinSamplesSplit: s.MinSamplesSplit,
		MinSamplesLeaf:  s.MinSamplesLeaf,
		MaxFeatures:     s.MaxFeatures,
		Seed:            s.Seed,
		Balanced:        s.Balanced,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getStringFromEnvOrConfig(key, configValue, def string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	if configValue != "" {
		return configValue
	}
	return def
}

func getIntFromEnvOrConfig(key string, configValue, def int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return def
}

func getInt64FromEnvOrConfig(key string, configValue, def int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return def
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	// Validate paths
	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if settings.ArtifactPath == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}

	// Validate ports
	if settings.ServerPort < common.MinServicePort || settings.ServerPort > common.MaxServicePort {
		return fmt.Errorf("server port must be between %d and %d, got %d", common.MinServicePort, common.MaxServicePort, settings.ServerPort)
	}
	if settings.MetricsPort < common.MinServicePort || settings.MetricsPort > common.MaxServicePort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d", common.MinServicePort, common.MaxServicePort, settings.MetricsPort)
	}
	if settings.ServerPort == settings.MetricsPort {
		return fmt.Errorf("server and metrics ports must differ, got %d for both", settings.ServerPort)
	}

	// Validate ensemble hyperparameters
	if settings.Trees < common.MinTrees || settings.Trees > common.MaxTrees {
		return fmt.Errorf("trees must be between %d and %d, got %d", common.MinTrees, common.MaxTrees, settings.Trees)
	}
	if settings.MaxDepth < common.MinDepth || settings.MaxDepth > common.MaxDepth {
		return fmt.Errorf("max depth must be between %d and %d, got %d", common.MinDepth, common.MaxDepth, settings.MaxDepth)
	}
	if settings.MinSamplesSplit < 2 {
		return fmt.Errorf("min samples split must be at least 2, got %d", settings.MinSamplesSplit)
	}
	if settings.MinSamplesLeaf < 1 {
		return fmt.Errorf("min samples leaf must be at least 1, got %d", settings.MinSamplesLeaf)
	}
	if settings.MaxFeatures < 0 || settings.MaxFeatures > features.Count() {
		return fmt.Errorf("max features must be between 0 and %d, got %d", features.Count(), settings.MaxFeatures)
	}

	// Validate evaluation parameters
	if settings.Folds < common.MinFolds || settings.Folds > common.MaxFolds {
		return fmt.Errorf("folds must be between %d and %d, got %d", common.MinFolds, common.MaxFolds, settings.Folds)
	}
	if settings.TopK < 1 || settings.TopK > features.Count() {
		return fmt.Errorf("top k must be between 1 and %d, got %d", features.Count(), settings.TopK)
	}

	// Validate fetch parameters
	if settings.OSFBaseURL == "" {
		return fmt.Errorf("OSF base URL cannot be empty")
	}
	if settings.FetchTimeout < time.Second || settings.FetchTimeout > 5*time.Minute {
		return fmt.Errorf("fetch timeout must be between 1s and 5m, got %v", settings.FetchTimeout)
	}
	if settings.FetchRetries < 0 || settings.FetchRetries > 10 {
		return fmt.Errorf("fetch retries must be between 0 and 10, got %d", settings.FetchRetries)
	}

	// Validate log level
	switch strings.ToLower(settings.LogLevel) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	return nil
}
