// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// minSecretLength is the shortest accepted DIFYSTUDIO_ENCRYPTION_SECRET.
const minSecretLength = 16

// DefaultMaxUploadBytes matches Dify's default per-file upload limit.
const DefaultMaxUploadBytes int64 = 15 << 20

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string

	// Fallback upstream settings, used when no credential record is stored.
	DifyBaseURL       string
	DifyAPIKey        string
	DifyDatasetAPIKey string

	EncryptionSecret string
	AllowedOrigins   []string
	UpstreamTimeout  time.Duration
	MaxUploadBytes   int64

	LogLevel  slog.Level
	LogFormat string
}

// HasFallbackAPIKey reports whether an upstream key was supplied via the environment.
func (c *Config) HasFallbackAPIKey() bool {
	return c.DifyAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// DIFYSTUDIO_ENCRYPTION_SECRET is required; there is no built-in fallback secret.
// Optional variables with defaults: DIFYSTUDIO_LISTEN_ADDR (127.0.0.1:8000),
// DIFYSTUDIO_DB_PATH (difystudio.db), DIFYSTUDIO_DIFY_BASE_URL (https://api.dify.ai/v1),
// DIFYSTUDIO_ALLOWED_ORIGINS (http://localhost:3000), DIFYSTUDIO_UPSTREAM_TIMEOUT (30s),
// DIFYSTUDIO_MAX_UPLOAD_BYTES (15 MiB),
// DIFYSTUDIO_LOG_LEVEL (info), DIFYSTUDIO_LOG_FORMAT (text).
func Load() (*Config, error) {
	secret := os.Getenv("DIFYSTUDIO_ENCRYPTION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("DIFYSTUDIO_ENCRYPTION_SECRET is required")
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("DIFYSTUDIO_ENCRYPTION_SECRET must be at least %d characters", minSecretLength)
	}

	listenAddr := "127.0.0.1:8000"
	if v, ok := os.LookupEnv("DIFYSTUDIO_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "difystudio.db"
	if v, ok := os.LookupEnv("DIFYSTUDIO_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	baseURL := "https://api.dify.ai/v1"
	if v, ok := os.LookupEnv("DIFYSTUDIO_DIFY_BASE_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("DIFYSTUDIO_DIFY_BASE_URL has invalid URL %q", v)
		}
		baseURL = strings.TrimRight(v, "/")
	}

	upstreamTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("DIFYSTUDIO_UPSTREAM_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DIFYSTUDIO_UPSTREAM_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("DIFYSTUDIO_UPSTREAM_TIMEOUT must be positive, got %s", parsed)
		}
		upstreamTimeout = parsed
	}

	maxUploadBytes := DefaultMaxUploadBytes
	if v, ok := os.LookupEnv("DIFYSTUDIO_MAX_UPLOAD_BYTES"); ok && v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DIFYSTUDIO_MAX_UPLOAD_BYTES has invalid size %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("DIFYSTUDIO_MAX_UPLOAD_BYTES must be positive, got %d", parsed)
		}
		maxUploadBytes = parsed
	}

	allowedOrigins := []string{"http://localhost:3000"}
	if v, ok := os.LookupEnv("DIFYSTUDIO_ALLOWED_ORIGINS"); ok && v != "" {
		allowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("DIFYSTUDIO_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("DIFYSTUDIO_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	logFormat := "text"
	if v, ok := os.LookupEnv("DIFYSTUDIO_LOG_FORMAT"); ok && v != "" {
		if v != "text" && v != "json" {
			return nil, fmt.Errorf("DIFYSTUDIO_LOG_FORMAT must be \"text\" or \"json\", got %q", v)
		}
		logFormat = v
	}

	return &Config{
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
		DifyBaseURL:       baseURL,
		DifyAPIKey:        os.Getenv("DIFYSTUDIO_DIFY_API_KEY"),
		DifyDatasetAPIKey: os.Getenv("DIFYSTUDIO_DIFY_DATASET_API_KEY"),
		EncryptionSecret:  secret,
		AllowedOrigins:    allowedOrigins,
		UpstreamTimeout:   upstreamTimeout,
		MaxUploadBytes:    maxUploadBytes,
		LogLevel:          logLevel,
		LogFormat:         logFormat,
	}, nil
}

// NewLogger builds the process logger described by the configuration.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
