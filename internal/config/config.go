package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects which vision model backend analyzes captures.
type Backend string

const (
	// BackendGemini uses the hosted Gemini API.
	BackendGemini Backend = "gemini"
	// BackendLocal uses an OpenAI-compatible endpoint (e.g. LM Studio).
	BackendLocal Backend = "local"
)

// CaptureConfig holds settings for the capture scheduler.
type CaptureConfig struct {
	Interval             time.Duration
	IdleThreshold        time.Duration
	CaptureRoot          string
	ArchiveRoot          string
	DeleteAfterAnalysis  bool
	DisableLockDetection bool
}

// GeminiConfig holds settings for the hosted Gemini backend.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// LocalLLMConfig holds settings for an OpenAI-compatible vision endpoint.
type LocalLLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string // "auto" or empty triggers /models discovery
	Timeout time.Duration
}

// RetryConfig holds the rate-limit retry protocol settings shared by backends.
type RetryConfig struct {
	MaxRetries     int
	Buffer         time.Duration
	RequestSpacing time.Duration
}

// SearchConfig holds settings for the optional semantic activity search.
type SearchConfig struct {
	Enabled          bool
	QdrantURL        string
	Collection       string
	VectorSize       int
	EmbeddingBaseURL string
	EmbeddingModel   string
}

// Config holds all configuration for the application.
type Config struct {
	Timezone   *time.Location
	DBPath     string
	SummaryDir string
	APIPort    string
	LogLevel   slog.Level
	LogFormat  string

	Backend Backend
	Capture CaptureConfig
	Gemini  GeminiConfig
	Local   LocalLLMConfig
	Retry   RetryConfig
	Search  SearchConfig
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded
// automatically. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	tzName := getEnv("TIMEZONE", "Asia/Tokyo")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	intervalSeconds, err := getEnvInt("CAPTURE_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	idleMinutes, err := getEnvInt("IDLE_THRESHOLD_MINUTES", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Timezone:   tz,
		DBPath:     getEnv("DB_PATH", "./data/mirulog.db"),
		SummaryDir: getEnv("SUMMARY_OUTPUT_DIR", "./output"),
		APIPort:    getEnv("API_PORT", "9000"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		Capture: CaptureConfig{
			Interval:             time.Duration(intervalSeconds) * time.Second,
			IdleThreshold:        time.Duration(idleMinutes) * time.Minute,
			CaptureRoot:          getEnv("CAPTURE_ROOT", "./data/captures"),
			ArchiveRoot:          getEnv("ARCHIVE_ROOT", "./data/archive"),
			DeleteAfterAnalysis:  getEnvBool("DELETE_CAPTURE_AFTER_ANALYSIS", true),
			DisableLockDetection: getEnvBool("MIRULOG_DISABLE_LOCK_CHECK", false),
		},
		Backend: Backend(strings.ToLower(getEnv("ANALYZER_BACKEND", string(BackendGemini)))),
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn", "warning":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	maxRetries, err := getEnvInt("ANALYZER_MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}
	bufferMillis, err := getEnvInt("ANALYZER_RETRY_BUFFER_MS", 500)
	if err != nil {
		return nil, err
	}
	spacingMillis, err := getEnvInt("ANALYZER_REQUEST_SPACING_MS", 0)
	if err != nil {
		return nil, err
	}
	cfg.Retry = RetryConfig{
		MaxRetries:     maxRetries,
		Buffer:         time.Duration(bufferMillis) * time.Millisecond,
		RequestSpacing: time.Duration(spacingMillis) * time.Millisecond,
	}

	maxTokens, err := getEnvInt("GEMINI_MAX_TOKENS", 1024)
	if err != nil {
		return nil, err
	}
	cfg.Gemini = GeminiConfig{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:       getEnv("GEMINI_MODEL", "gemini-pro-vision"),
		MaxTokens:   maxTokens,
		Temperature: float32(getEnvFloat("GEMINI_TEMPERATURE", 0.4)),
	}

	timeoutSeconds, err := getEnvInt("LOCAL_LLM_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	cfg.Local = LocalLLMConfig{
		BaseURL: getEnv("LOCAL_LLM_BASE_URL", "http://localhost:1234/v1"),
		APIKey:  os.Getenv("LOCAL_LLM_API_KEY"),
		Model:   getEnv("LOCAL_LLM_MODEL", "auto"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}

	// Semantic activity search is opt-in: enabled only when QDRANT_URL is set.
	qdrantURL := os.Getenv("QDRANT_URL")
	if qdrantURL != "" {
		vectorSize, err := getEnvInt("QDRANT_VECTOR_SIZE", 0)
		if err != nil {
			return nil, err
		}
		if vectorSize <= 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0 when QDRANT_URL is set")
		}
		cfg.Search = SearchConfig{
			Enabled:          true,
			QdrantURL:        qdrantURL,
			Collection:       getEnv("QDRANT_COLLECTION", "observations"),
			VectorSize:       vectorSize,
			EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		}
	}

	switch cfg.Backend {
	case BackendGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when ANALYZER_BACKEND is gemini")
		}
	case BackendLocal:
		if cfg.Local.BaseURL == "" {
			return nil, fmt.Errorf("LOCAL_LLM_BASE_URL is required when ANALYZER_BACKEND is local")
		}
	default:
		return nil, fmt.Errorf("unknown ANALYZER_BACKEND %q (expected gemini or local)", cfg.Backend)
	}

	if cfg.Capture.Interval <= 0 {
		return nil, fmt.Errorf("CAPTURE_INTERVAL_SECONDS must be greater than 0")
	}

	// Create data directories up front so later opens cannot race on them.
	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.Capture.CaptureRoot, cfg.Capture.ArchiveRoot, cfg.SummaryDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
