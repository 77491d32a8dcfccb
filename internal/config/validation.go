package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Credentials are required for every upstream call; fail fast here
	// instead of on the first tool invocation.
	if strings.TrimSpace(c.ZohoClientID) == "" {
		return fmt.Errorf("%w: set the ZOHO_CLIENT_ID environment variable", ErrMissingClientID)
	}
	if strings.TrimSpace(c.ZohoClientSecret) == "" {
		return fmt.Errorf("%w: set the ZOHO_CLIENT_SECRET environment variable", ErrMissingClientSecret)
	}
	if strings.TrimSpace(c.ZohoRefreshToken) == "" {
		return fmt.Errorf("%w: set the ZOHO_REFRESH_TOKEN environment variable", ErrMissingRefreshToken)
	}

	if err := validateEndpointURL(c.ZohoAuthURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAuthURL, err)
	}
	if err := validateEndpointURL(c.ZohoBaseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}

	if c.Host != "" && c.Host != "localhost" {
		if ip := net.ParseIP(c.Host); ip == nil {
			if strings.ContainsAny(c.Host, " \t\n") {
				return fmt.Errorf("%w: %q", ErrInvalidHost, c.Host)
			}
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPort, c.Port)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %q (expected debug, info, warn or error)", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.HTTPTimeoutSeconds < 1 || c.HTTPTimeoutSeconds > 300 {
		return fmt.Errorf("%w: must be between 1 and 300 seconds, got %d", ErrInvalidTimeout, c.HTTPTimeoutSeconds)
	}

	return nil
}

// validateEndpointURL checks that a configured endpoint is an absolute
// http(s) URL with a host.
func validateEndpointURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
