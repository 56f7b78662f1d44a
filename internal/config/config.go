package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/learnaloud/internal/outline"
	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds service settings. Precedence: env vars > config file > defaults.
type Config struct {
	Port     string
	LogLevel string

	// Auth
	APIKey string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Sessions
	SessionStore    string
	SQLitePath      string
	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// PDF
	PDFValidate          bool
	PDFFallbackPdftotext bool

	// arXiv
	ArxivAPIURL   string
	ArxivPDFURL   string
	ArxivInterval time.Duration

	// VocalBridge
	VocalBridgeAPIKey string
	VocalBridgeURL    string

	// Remote API latency window
	StatsWindow time.Duration

	Outline outline.Config
}

// Load reads configuration from defaults, the YAML file at path (skipped when
// path is empty) and LEARNALOUD_* environment variables, then validates it.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("LEARNALOUD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("vocalbridge-api-key", "LEARNALOUD_VOCALBRIDGE_API_KEY", "VOCAL_BRIDGE_API_KEY")

	cfg := Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log-level"),

		APIKey: v.GetString("api-key"),

		UploadDir:      v.GetString("upload-dir"),
		MaxUploadBytes: v.GetInt64("max-upload-bytes"),

		SessionStore:    strings.ToLower(v.GetString("session-store")),
		SQLitePath:      v.GetString("sqlite-path"),
		SessionTTL:      v.GetDuration("session-ttl"),
		CleanupInterval: v.GetDuration("cleanup-interval"),

		WorkerCount:  v.GetInt("worker-count"),
		MaxQueueSize: v.GetInt("max-queue-size"),
		JobTTL:       v.GetDuration("job-ttl"),

		PDFValidate:          v.GetBool("pdf-validate"),
		PDFFallbackPdftotext: v.GetBool("pdf-fallback-pdftotext"),

		ArxivAPIURL:   v.GetString("arxiv-api-url"),
		ArxivPDFURL:   v.GetString("arxiv-pdf-url"),
		ArxivInterval: v.GetDuration("arxiv-interval"),

		VocalBridgeAPIKey: v.GetString("vocalbridge-api-key"),
		VocalBridgeURL:    v.GetString("vocalbridge-url"),

		StatsWindow: v.GetDuration("stats-window"),

		Outline: outline.Config{
			HeadingRatio:       v.GetFloat64("outline.heading-ratio"),
			Level1Ratio:        v.GetFloat64("outline.level1-ratio"),
			MinTextLen:         v.GetInt("outline.min-text-len"),
			MaxHeadingLen:      v.GetInt("outline.max-heading-len"),
			MaxKeyTermLen:      v.GetInt("outline.max-key-term-len"),
			MaxKeyTerms:        v.GetInt("outline.max-key-terms"),
			AbstractBufferLen:  v.GetInt("outline.abstract-buffer-len"),
			AbstractMaxLen:     v.GetInt("outline.abstract-max-len"),
			CaptionMaxDistance: v.GetFloat64("outline.caption-max-distance"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("log-level", "info")
	v.SetDefault("api-key", "")

	v.SetDefault("upload-dir", "uploads")
	v.SetDefault("max-upload-bytes", 52428800) // 50MB

	v.SetDefault("session-store", StoreMemory)
	v.SetDefault("sqlite-path", "learnaloud.db")
	v.SetDefault("session-ttl", 24*time.Hour)
	v.SetDefault("cleanup-interval", 5*time.Minute)

	v.SetDefault("worker-count", 4)
	v.SetDefault("max-queue-size", 100)
	v.SetDefault("job-ttl", time.Hour)

	v.SetDefault("pdf-validate", true)
	v.SetDefault("pdf-fallback-pdftotext", true)

	v.SetDefault("arxiv-api-url", "http://export.arxiv.org/api/query")
	v.SetDefault("arxiv-pdf-url", "https://arxiv.org/pdf")
	v.SetDefault("arxiv-interval", 3*time.Second)

	v.SetDefault("vocalbridge-api-key", "")
	v.SetDefault("vocalbridge-url", "http://vocalbridgeai.com/api/v1")

	v.SetDefault("stats-window", time.Hour)

	d := outline.DefaultConfig()
	v.SetDefault("outline.heading-ratio", d.HeadingRatio)
	v.SetDefault("outline.level1-ratio", d.Level1Ratio)
	v.SetDefault("outline.min-text-len", d.MinTextLen)
	v.SetDefault("outline.max-heading-len", d.MaxHeadingLen)
	v.SetDefault("outline.max-key-term-len", d.MaxKeyTermLen)
	v.SetDefault("outline.max-key-terms", d.MaxKeyTerms)
	v.SetDefault("outline.abstract-buffer-len", d.AbstractBufferLen)
	v.SetDefault("outline.abstract-max-len", d.AbstractMaxLen)
	v.SetDefault("outline.caption-max-distance", d.CaptionMaxDistance)
}

// Validate checks that settings are usable together.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.SessionStore {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite-path is required when session-store is sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session-store %q (want %s or %s)", c.SessionStore, StoreMemory, StoreSQLite))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("upload-dir is required"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max-upload-bytes must be positive"))
	}
	if c.WorkerCount <= 0 {
		errs = append(errs, errors.New("worker-count must be positive"))
	}
	if c.MaxQueueSize <= 0 {
		errs = append(errs, errors.New("max-queue-size must be positive"))
	}
	if c.JobTTL <= 0 {
		errs = append(errs, errors.New("job-ttl must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("cleanup-interval must be positive"))
	}
	if c.Outline.HeadingRatio <= 1 {
		errs = append(errs, errors.New("outline.heading-ratio must be greater than 1"))
	}
	if c.Outline.Level1Ratio < c.Outline.HeadingRatio {
		errs = append(errs, errors.New("outline.level1-ratio must not be below outline.heading-ratio"))
	}
	if c.Outline.MaxKeyTerms < 0 || c.Outline.AbstractMaxLen < 0 {
		errs = append(errs, errors.New("outline limits must not be negative"))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log-level %q", c.LogLevel)
	}
	return level, nil
}
