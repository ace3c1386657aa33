package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the service configuration, loaded from the environment.
type Config struct {
	Port   string `env:"PORT" envDefault:"8095"`
	APIKey string `env:"READPACE_API_KEY"`

	// Layout defaults, overridable per request.
	DefaultLineWidth    int     `env:"DEFAULT_LINE_WIDTH" envDefault:"80"`
	DefaultLinesPerPage int     `env:"DEFAULT_LINES_PER_PAGE" envDefault:"20"`
	FigureSpanRatio     float64 `env:"FIGURE_SPAN_RATIO" envDefault:"0.35"`
	FigureSpanFloor     int     `env:"FIGURE_SPAN_FLOOR" envDefault:"4"`
	CaptionExtraCap     int     `env:"CAPTION_EXTRA_CAP" envDefault:"3"`

	// Pacing defaults.
	DefaultWPM           float64       `env:"DEFAULT_WPM" envDefault:"300"`
	DefaultSaccadeLength int           `env:"DEFAULT_SACCADE_LENGTH" envDefault:"8"`
	MinDelayFactor       float64       `env:"MIN_DELAY_FACTOR" envDefault:"0.75"`
	RampRate             float64       `env:"RAMP_RATE" envDefault:"0"`
	RampInterval         time.Duration `env:"RAMP_INTERVAL" envDefault:"30s"`
	RampCurve            string        `env:"RAMP_CURVE" envDefault:"linear"`
	RampStartPercent     float64       `env:"RAMP_START_PERCENT" envDefault:"60"`

	// Session and cache lifetimes.
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	LayoutCacheTTL time.Duration `env:"LAYOUT_CACHE_TTL" envDefault:"10m"`

	// External progress store; empty URL disables reporting.
	ProgressStoreURL    string `env:"PROGRESS_STORE_URL"`
	ProgressStoreAPIKey string `env:"PROGRESS_STORE_API_KEY"`

	// Request limits.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"4194304"` // 4MB
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.LayoutCacheTTL <= 0 {
		cfg.LayoutCacheTTL = 10 * time.Minute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4 << 20
	}
	return cfg, nil
}

// Validate checks required settings.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("READPACE_API_KEY is required")
	}
	if c.ProgressStoreURL != "" && c.ProgressStoreAPIKey == "" {
		return fmt.Errorf("PROGRESS_STORE_API_KEY is required when PROGRESS_STORE_URL is set")
	}
	return nil
}
