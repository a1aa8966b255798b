package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/dockhand/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, DOCKHAND_CONFIG env, ./dockhand.yaml, /etc/dockhand/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log(debug.CategoryConfig, "loaded config file", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. DOCKHAND_CONFIG environment variable
// 3. ./dockhand.yaml in the current directory
// 4. /etc/dockhand/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("DOCKHAND_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"dockhand.yaml",
		"/etc/dockhand/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. DOCKER_HOST
// is honoured so that dockhand talks to the same daemon as the docker CLI.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DOCKER_HOST"); v != "" {
		cfg.Daemon.Host = v
	}
	if v := os.Getenv("DOCKHAND_HOST"); v != "" {
		cfg.Daemon.Host = v
	}
	if v := os.Getenv("DOCKHAND_API_VERSION"); v != "" {
		cfg.Daemon.APIVersion = normalizeAPIVersion(v)
	}
	if v := os.Getenv("DOCKHAND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DOCKHAND_TIMEOUT: %w", err)
		}
		cfg.Daemon.Timeout = d
	}

	if v := os.Getenv("DOCKHAND_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := os.Getenv("DOCKHAND_TOKEN"); v != "" {
		cfg.Auth.Token = v
		// A token alone is enough to switch on bearer auth.
		if cfg.Auth.Type == "none" {
			cfg.Auth.Type = "bearer"
		}
	}
	if v := os.Getenv("DOCKHAND_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}

	if v := os.Getenv("DOCKHAND_METRICS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DOCKHAND_METRICS: %w", err)
		}
		cfg.Observability.Metrics.Enabled = enabled
	}

	if v := os.Getenv("DOCKHAND_DEBUG"); v != "" {
		cfg.Debug.Categories = v
	}
	if v := os.Getenv("DOCKHAND_LOG_LEVEL"); v != "" {
		cfg.Debug.Level = v
	}

	cfg.Daemon.APIVersion = normalizeAPIVersion(cfg.Daemon.APIVersion)
	return nil
}

// normalizeAPIVersion accepts "1.43" as well as "v1.43".
func normalizeAPIVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.TokenFile != "" && cfg.Auth.Token == "" {
		val, err := readSecretFile(cfg.Auth.TokenFile)
		if err != nil {
			return fmt.Errorf("auth.token_file: %w", err)
		}
		cfg.Auth.Token = val
	}

	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
