package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/drivenlabs/membergate/config"
)

// InitLogger installs a JSON slog logger on stdout as the default. LOG_LEVEL
// accepts debug, info, warn or error; anything else means info.
func InitLogger() *slog.Logger {
	logger := newLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (config.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.AppConfig{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return config.AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig fails unless SERVICES names at least one known mode.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	if _, err := cfg.EnabledServices(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}
	return nil
}

// EnabledServiceNames lists the enabled modes in start order, or nothing when
// the configuration is invalid.
func EnabledServiceNames(cfg *config.AppConfig) []string {
	names := []string{}
	if cfg == nil {
		return names
	}
	enabled, err := cfg.EnabledServices()
	if err != nil {
		return names
	}
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			names = append(names, string(mode))
		}
	}
	return names
}

// ValidateRuntimeConfig rejects settings that would otherwise only fail once
// traffic arrives.
func ValidateRuntimeConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if err := cfg.Mail.Validate(); err != nil {
		return fmt.Errorf("invalid mail configuration: %w", err)
	}
	if cfg.Auth.Mode == config.AuthModeMock && !cfg.IsDev {
		return errors.New("AUTH_MODE=mock requires DEV=true")
	}
	return nil
}
