package config

import "strings"

const defaultMetricsPrefix = "membergate"

// ObservabilityConfig controls metric emission to a StatsD agent.
type ObservabilityConfig struct {
	MetricsEnabled bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress  string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	MetricsPrefix  string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"membergate"`
}

// Sanitize normalises fields and disables metrics without an address.
func (c *ObservabilityConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.MetricsEnabled = false
	}
	c.MetricsPrefix = strings.Trim(strings.TrimSpace(c.MetricsPrefix), ".")
	if c.MetricsPrefix == "" {
		c.MetricsPrefix = defaultMetricsPrefix
	}
}
