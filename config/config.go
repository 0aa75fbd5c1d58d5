// Package config loads membergate settings from the environment with
// caarlos0/env. Each concern lives in its own file and owns its Sanitize.
package config

import (
	"os"
	"strings"
)

// AppConfig is the root of the environment-driven configuration.
type AppConfig struct {
	// IsDev enables development-only behaviour such as AUTH_MODE=mock.
	// NODE_ENV=development also turns it on.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth     AuthConfig
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	HTTP     HTTPConfig
	Access   AccessConfig
	Mail     MailConfig

	// Services is a comma-separated list of ServiceMode values to run.
	Services string `env:"SERVICES" envDefault:"http"`

	Reaper        ReaperConfig
	Observability ObservabilityConfig
}

// Sanitize clamps and defaults values after env parsing.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.HTTP.Sanitize()
	c.Access.Sanitize()
	c.Mail.Sanitize()
	c.Reaper.Sanitize()
	c.Observability.Sanitize()

	if !c.IsDev {
		switch strings.ToLower(os.Getenv("NODE_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}

// EnabledServices parses Services.
func (c *AppConfig) EnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// ServiceEnabled reports whether mode is listed in Services. An unparsable
// list enables nothing.
func (c *AppConfig) ServiceEnabled(mode ServiceMode) bool {
	enabled, err := c.EnabledServices()
	return err == nil && enabled[mode]
}
