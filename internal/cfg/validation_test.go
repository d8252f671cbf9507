package cfg

import (
	"testing"
	"time"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		DataPath:        "data",
		ArtifactPath:    "models/model.json",
		ReportPath:      "models/training_report.json",
		ServerPort:      8090,
		MetricsPort:     8080,
		Trees:           200,
		MaxDepth:        10,
		MinSamplesSplit: 10,
		MinSamplesLeaf:  5,
		MaxFeatures:     0,
		Seed:            42,
		Balanced:        true,
		Folds:           5,
		TopK:            10,
		OSFBaseURL:      "https://api.osf.io/v2",
		FetchTimeout:    30 * time.Second,
		FetchRetries:    2,
		LogLevel:        "info",
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	settings := createValidSettings()

	err := validateSettings(settings)
	if err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings_EmptyDataPath(t *testing.T) {
	settings := createValidSettings()
	settings.DataPath = ""

	err := validateSettings(settings)
	if err == nil {
		t.Error("Expected error for empty data path")
	}
}

func TestValidateSettings_EmptyArtifactPath(t *testing.T) {
	settings := createValidSettings()
	settings.ArtifactPath = ""

	err := validateSettings(settings)
	if err == nil {
		t.Error("Expected error for empty artifact path")
	}
}

func TestValidateSettings_InvalidServerPort(t *testing.T) {
	testCases := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"privileged", 80, true},
		{"minimum valid", 1024, false},
		{"normal", 8090, false},
		{"maximum valid", 65535, false},
		{"too high", 70000, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.ServerPort = tc.port

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid server port")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid server port, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_PortClash(t *testing.T) {
	settings := createValidSettings()
	settings.ServerPort = 9090
	settings.MetricsPort = 9090

	err := validateSettings(settings)
	if err == nil {
		t.Error("Expected error for identical server and metrics ports")
	}
}

func TestValidateSettings_InvalidTrees(t *testing.T) {
	testCases := []struct {
		name    string
		trees   int
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -1, true},
		{"minimum valid", 1, false},
		{"normal", 200, false},
		{"maximum valid", 5000, false},
		{"too many", 5001, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.Trees = tc.trees

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid tree count")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid tree count, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidMaxDepth(t *testing.T) {
	testCases := []struct {
		name    string
		depth   int
		wantErr bool
	}{
		{"zero", 0, true},
		{"minimum valid", 1, false},
		{"normal", 10, false},
		{"maximum valid", 64, false},
		{"too deep", 65, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.MaxDepth = tc.depth

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid max depth")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid max depth, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidMinSamples(t *testing.T) {
	t.Run("split below two", func(t *testing.T) {
		settings := createValidSettings()
		settings.MinSamplesSplit = 1

		if err := validateSettings(settings); err == nil {
			t.Error("Expected error for min samples split below 2")
		}
	})

	t.Run("leaf below one", func(t *testing.T) {
		settings := createValidSettings()
		settings.MinSamplesLeaf = 0

		if err := validateSettings(settings); err == nil {
			t.Error("Expected error for min samples leaf below 1")
		}
	})
}

func TestValidateSettings_InvalidMaxFeatures(t *testing.T) {
	testCases := []struct {
		name        string
		maxFeatures int
		wantErr     bool
	}{
		{"negative", -1, true},
		{"auto", 0, false},
		{"normal", 4, false},
		{"full schema", 15, false},
		{"beyond schema", 16, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.MaxFeatures = tc.maxFeatures

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid max features")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid max features, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidFolds(t *testing.T) {
	testCases := []struct {
		name    string
		folds   int
		wantErr bool
	}{
		{"one fold", 1, true},
		{"minimum valid", 2, false},
		{"normal", 5, false},
		{"maximum valid", 20, false},
		{"too many", 21, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.Folds = tc.folds

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid fold count")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid fold count, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidTopK(t *testing.T) {
	testCases := []struct {
		name    string
		topK    int
		wantErr bool
	}{
		{"zero", 0, true},
		{"minimum valid", 1, false},
		{"full schema", 15, false},
		{"beyond schema", 16, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.TopK = tc.topK

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid top k")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid top k, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidFetchTimeout(t *testing.T) {
	testCases := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"too short", 500 * time.Millisecond, true},
		{"minimum valid", 1 * time.Second, false},
		{"normal", 30 * time.Second, false},
		{"maximum valid", 5 * time.Minute, false},
		{"too long", 10 * time.Minute, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.FetchTimeout = tc.timeout

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid fetch timeout")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid fetch timeout, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidFetchRetries(t *testing.T) {
	testCases := []struct {
		name    string
		retries int
		wantErr bool
	}{
		{"negative", -1, true},
		{"zero", 0, false},
		{"maximum valid", 10, false},
		{"too many", 11, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.FetchRetries = tc.retries

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid fetch retries")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid fetch retries, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_EmptyOSFBaseURL(t *testing.T) {
	settings := createValidSettings()
	settings.OSFBaseURL = ""

	err := validateSettings(settings)
	if err == nil {
		t.Error("Expected error for empty OSF base URL")
	}
}

func TestValidateSettings_LogLevel(t *testing.T) {
	testCases := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{"info", "info", false},
		{"uppercase", "DEBUG", false},
		{"trace", "trace", false},
		{"unknown", "verbose", true},
		{"empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.LogLevel = tc.level

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid log level")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid log level, got: %v", err)
			}
		})
	}
}
