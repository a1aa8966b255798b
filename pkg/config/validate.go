package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var apiVersionPattern = regexp.MustCompile(`^v\d+\.\d+$`)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if err := validateHost(c.Daemon.Host); err != nil {
		errs = append(errs, err)
	}

	if !apiVersionPattern.MatchString(c.Daemon.APIVersion) {
		errs = append(errs, fmt.Errorf("daemon.api_version must look like \"v1.43\", got %q", c.Daemon.APIVersion))
	}

	if c.Daemon.Timeout < 0 {
		errs = append(errs, fmt.Errorf("daemon.timeout must not be negative, got %s", c.Daemon.Timeout))
	}

	switch c.Auth.Type {
	case "none":
	case "bearer":
		if c.Auth.Token == "" {
			errs = append(errs, fmt.Errorf("auth.token or auth.token_file is required when auth.type is \"bearer\""))
		}
	case "jwt":
		if c.Auth.JWT.Secret == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
		}
		if c.Auth.JWT.TTL <= 0 {
			errs = append(errs, fmt.Errorf("auth.jwt.ttl must be > 0, got %s", c.Auth.JWT.TTL))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"bearer\", or \"jwt\", got %q", c.Auth.Type))
	}

	if c.Observability.Metrics.Enabled {
		if c.Observability.Metrics.Addr == "" {
			errs = append(errs, fmt.Errorf("observability.metrics.addr is required when metrics are enabled"))
		}
		if !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
			errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
		}
	}

	switch strings.ToUpper(c.Debug.Level) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("debug.level must be TRACE, DEBUG, INFO, WARN or ERROR, got %q", c.Debug.Level))
	}

	return errors.Join(errs...)
}

func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("daemon.host is required")
	}
	u, err := url.Parse(host)
	if err != nil {
		return fmt.Errorf("daemon.host: %w", err)
	}
	switch u.Scheme {
	case "unix":
		if u.Path == "" {
			return fmt.Errorf("daemon.host %q has no socket path", host)
		}
	case "tcp", "http", "https":
		if u.Host == "" {
			return fmt.Errorf("daemon.host %q has no address", host)
		}
	default:
		return fmt.Errorf("daemon.host scheme must be unix, tcp, http or https, got %q", u.Scheme)
	}
	return nil
}
