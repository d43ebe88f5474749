package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds process-level settings resolved once at startup. Policy that
// has to change without a restart lives in the settings table instead.
type Config struct {
	Addr     string `env:"ATRIOS_ADDR, default=:8080"`
	Env      string `env:"ATRIOS_ENV, default=development"`
	LogLevel string `env:"ATRIOS_LOG_LEVEL, default=info"`

	PostgresDSN string `env:"ATRIOS_PG_DSN"`

	// SessionSecret signs staff session cookies and flash messages.
	SessionSecret string        `env:"ATRIOS_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"ATRIOS_SESSION_TTL, default=12h"`

	// SiteURL is prepended to apply-link tokens when rendering share links.
	SiteURL string `env:"ATRIOS_SITE_URL, default=http://localhost:8080"`

	Uploads UploadConfig

	// Public apply endpoint rate limit (token bucket per client IP).
	ApplyRateBurst     int `env:"ATRIOS_APPLY_RATE_BURST, default=5"`
	ApplyRatePerMinute int `env:"ATRIOS_APPLY_RATE_PER_MINUTE, default=10"`
}

// UploadConfig bounds resume and agreement uploads.
type UploadConfig struct {
	Dir      string `env:"ATRIOS_UPLOAD_DIR, default=uploads"`
	MaxBytes int64  `env:"ATRIOS_UPLOAD_MAX_BYTES, default=5242880"`
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("config: ATRIOS_SESSION_SECRET is required")
	}
	return &cfg, nil
}
