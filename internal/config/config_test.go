package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	envVars := []string{
		"TIMEZONE", "DB_PATH", "SUMMARY_OUTPUT_DIR", "API_PORT",
		"LOG_LEVEL", "LOG_FORMAT",
		"CAPTURE_INTERVAL_SECONDS", "IDLE_THRESHOLD_MINUTES",
		"CAPTURE_ROOT", "ARCHIVE_ROOT", "DELETE_CAPTURE_AFTER_ANALYSIS",
		"MIRULOG_DISABLE_LOCK_CHECK",
		"ANALYZER_BACKEND", "ANALYZER_MAX_RETRIES", "ANALYZER_RETRY_BUFFER_MS",
		"ANALYZER_REQUEST_SPACING_MS",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_MAX_TOKENS", "GEMINI_TEMPERATURE",
		"LOCAL_LLM_BASE_URL", "LOCAL_LLM_API_KEY", "LOCAL_LLM_MODEL", "LOCAL_LLM_TIMEOUT_SECONDS",
		"QDRANT_URL", "QDRANT_COLLECTION", "QDRANT_VECTOR_SIZE",
		"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME",
	}
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "gemini backend with defaults",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.Backend == BackendGemini &&
					cfg.Capture.Interval == 60*time.Second &&
					cfg.Capture.IdleThreshold == 5*time.Minute &&
					cfg.Capture.DeleteAfterAnalysis &&
					cfg.Retry.MaxRetries == 5 &&
					cfg.Retry.Buffer == 500*time.Millisecond &&
					cfg.Gemini.Model == "gemini-pro-vision" &&
					cfg.APIPort == "9000" &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.Timezone.String() == "Asia/Tokyo" &&
					!cfg.Search.Enabled
			},
		},
		{
			name:     "gemini backend without api key",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "local backend",
			setupEnv: func(t *testing.T) {
				setEnv("ANALYZER_BACKEND", "local")
				setEnv("LOCAL_LLM_BASE_URL", "http://localhost:1234/v1")
				setEnv("LOCAL_LLM_MODEL", "qwen2-vl")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.Backend == BackendLocal &&
					cfg.Local.BaseURL == "http://localhost:1234/v1" &&
					cfg.Local.Model == "qwen2-vl" &&
					cfg.Local.Timeout == 120*time.Second
			},
		},
		{
			name: "unknown backend",
			setupEnv: func(t *testing.T) {
				setEnv("ANALYZER_BACKEND", "openai")
			},
			wantErr: true,
		},
		{
			name: "invalid timezone",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("TIMEZONE", "Not/AZone")
			},
			wantErr: true,
		},
		{
			name: "invalid interval",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("CAPTURE_INTERVAL_SECONDS", "not-a-number")
			},
			wantErr: true,
		},
		{
			name: "zero interval",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("CAPTURE_INTERVAL_SECONDS", "0")
			},
			wantErr: true,
		},
		{
			name: "custom capture settings",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("CAPTURE_INTERVAL_SECONDS", "30")
				setEnv("IDLE_THRESHOLD_MINUTES", "10")
				setEnv("DELETE_CAPTURE_AFTER_ANALYSIS", "false")
				setEnv("MIRULOG_DISABLE_LOCK_CHECK", "true")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.Capture.Interval == 30*time.Second &&
					cfg.Capture.IdleThreshold == 10*time.Minute &&
					!cfg.Capture.DeleteAfterAnalysis &&
					cfg.Capture.DisableLockDetection
			},
		},
		{
			name: "search enabled when qdrant url set",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("QDRANT_URL", "http://localhost:6333")
				setEnv("QDRANT_VECTOR_SIZE", "768")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.Search.Enabled &&
					cfg.Search.QdrantURL == "http://localhost:6333" &&
					cfg.Search.VectorSize == 768 &&
					cfg.Search.Collection == "observations"
			},
		},
		{
			name: "qdrant url without vector size",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("QDRANT_URL", "http://localhost:6333")
			},
			wantErr: true,
		},
		{
			name: "log level parsing",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("LOG_LEVEL", "debug")
				setEnv("LOG_FORMAT", "json")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LogLevel == slog.LevelDebug && cfg.LogFormat == "json"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Change to a temp directory without .env file, so data dirs are
			// created under the temp dir and no project .env interferes.
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir)
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			for _, key := range envVars {
				unsetEnv(key)
			}

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Error("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		raw          string
		defaultValue bool
		want         bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"garbage", true, true},
	}

	for _, tt := range tests {
		setEnv("MIRULOG_TEST_BOOL", tt.raw)
		if got := getEnvBool("MIRULOG_TEST_BOOL", tt.defaultValue); got != tt.want {
			t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.raw, tt.defaultValue, got, tt.want)
		}
	}
	unsetEnv("MIRULOG_TEST_BOOL")
}
