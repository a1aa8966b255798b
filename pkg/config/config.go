// Package config provides unified configuration for dockhand.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (DOCKER_HOST and the DOCKHAND_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for a dockhand client.
type Config struct {
	Daemon        DaemonConfig        `yaml:"daemon"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
	Debug         DebugConfig         `yaml:"debug"`
}

// DaemonConfig holds the daemon connection settings.
type DaemonConfig struct {
	Host       string        `yaml:"host"`        // default: "unix:///var/run/docker.sock"
	APIVersion string        `yaml:"api_version"` // default: "v1.43"
	Timeout    time.Duration `yaml:"timeout"`     // synchronous requests only, default: 30s
	UserAgent  string        `yaml:"user_agent"`  // default: "dockhand"
}

// AuthConfig holds the credentials presented to the daemon, usually a
// TLS-terminating or authenticating proxy in front of it.
type AuthConfig struct {
	Type      string    `yaml:"type"`       // "none", "bearer" or "jwt", default: "none"
	Token     string    `yaml:"token"`      // for type=bearer
	TokenFile string    `yaml:"token_file"` // _file variant for token
	JWT       JWTConfig `yaml:"jwt"`
}

// JWTConfig holds the settings for self-signed HS256 bearer tokens.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	SecretFile string        `yaml:"secret_file"` // _file variant for secret
	Subject    string        `yaml:"subject"`     // default: "dockhand"
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	TTL        time.Duration `yaml:"ttl"` // default: 5m
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings. The endpoint is
// served by the dockhand CLI only; library users register the collectors
// with their own server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Addr    string `yaml:"addr"`    // default: ":9323"
	Path    string `yaml:"path"`    // default: "/metrics"
}

// DebugConfig selects debug log categories, see package debug.
type DebugConfig struct {
	Categories string `yaml:"categories"` // comma separated, e.g. "transport,session"
	Level      string `yaml:"level"`      // TRACE, DEBUG, INFO, WARN or ERROR
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Daemon: DaemonConfig{
			Host:       "unix:///var/run/docker.sock",
			APIVersion: "v1.43",
			Timeout:    30 * time.Second,
			UserAgent:  "dockhand",
		},
		Auth: AuthConfig{
			Type: "none",
			JWT: JWTConfig{
				Subject: "dockhand",
				TTL:     5 * time.Minute,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Addr: ":9323",
				Path: "/metrics",
			},
		},
	}
}
