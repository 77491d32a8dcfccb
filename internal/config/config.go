// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.sprints-mcp/config.yaml or ./config.yaml)
//  3. Default values
//
// Security: sensitive values (client secret, refresh token) are never
// logged; MarshalJSON masks them explicitly.
//
// Error handling uses sentinel errors for Go-idiomatic checking with
// errors.Is(), wrapped with context via fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingClientID indicates the Zoho OAuth client id is missing.
	ErrMissingClientID = errors.New("missing Zoho client id")

	// ErrMissingClientSecret indicates the Zoho OAuth client secret is missing.
	ErrMissingClientSecret = errors.New("missing Zoho client secret")

	// ErrMissingRefreshToken indicates the Zoho OAuth refresh token is missing.
	ErrMissingRefreshToken = errors.New("missing Zoho refresh token")

	// ErrInvalidHost indicates the listen host is invalid.
	ErrInvalidHost = errors.New("invalid host")

	// ErrInvalidPort indicates the listen port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidLogLevel indicates the log level string is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidAuthURL indicates the OAuth token endpoint URL is invalid.
	ErrInvalidAuthURL = errors.New("invalid auth URL")

	// ErrInvalidBaseURL indicates the Sprints API base URL is invalid.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidTimeout indicates the HTTP timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid HTTP timeout")
)

// Defaults for the Zoho endpoints. The base URL carries the team segment
// the same way the upstream API addresses resources.
const (
	DefaultAuthURL = "https://accounts.zoho.com/oauth/v2/token"
	DefaultBaseURL = "https://sprintsapi.zoho.com/zsapi/team/870567727"

	// DefaultScopes is the read-only scope set the server was authorized with.
	DefaultScopes = "ZohoSprints.teams.READ,ZohoSprints.projects.READ," +
		"ZohoSprints.sprints.READ,ZohoSprints.items.READ,ZohoSprints.epic.READ"
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields, update MarshalJSON.
type Config struct {
	// Zoho OAuth credentials
	ZohoClientID     string `mapstructure:"zoho_client_id" json:"zoho_client_id"`
	ZohoClientSecret string `mapstructure:"zoho_client_secret" json:"zoho_client_secret"` // SENSITIVE: masked in MarshalJSON
	ZohoRefreshToken string `mapstructure:"zoho_refresh_token" json:"zoho_refresh_token"` // SENSITIVE: masked in MarshalJSON

	// Zoho endpoints
	ZohoAuthURL string `mapstructure:"zoho_auth_url" json:"zoho_auth_url"`
	ZohoBaseURL string `mapstructure:"zoho_base_url" json:"zoho_base_url"`
	ZohoScopes  string `mapstructure:"zoho_scopes" json:"zoho_scopes"`

	// Server configuration
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Outbound HTTP client timeout in seconds for Zoho API calls.
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds" json:"http_timeout_seconds"`

	// Rate limiter burst size per client IP (0 = default).
	RateBurst int `mapstructure:"rate_burst" json:"rate_burst"`

	// TrustProxy trusts X-Real-IP/X-Forwarded-For headers
	// (set true behind a reverse proxy).
	TrustProxy bool `mapstructure:"trust_proxy" json:"trust_proxy"`

	// Tracing configuration (optional, disabled when endpoint is empty).
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// TracingConfig holds OTLP trace exporter configuration.
type TracingConfig struct {
	// Endpoint is the OTLP HTTP collector endpoint (e.g. localhost:4318).
	// Empty disables tracing.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the service name reported in traces (default: sprints-mcp)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".sprints-mcp"))
	}
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults and env apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Fail fast on invalid configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("zoho_auth_url", DefaultAuthURL)
	v.SetDefault("zoho_base_url", DefaultBaseURL)
	v.SetDefault("zoho_scopes", DefaultScopes)

	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("rate_burst", 0)
	v.SetDefault("trust_proxy", false)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.environment", "dev")
	v.SetDefault("tracing.service_name", "sprints-mcp")
}

// bindEnvVariables binds environment variables explicitly.
// Secrets come exclusively from the environment (12-factor), never from
// the config file search path of a shared machine.
func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("zoho_client_id", "ZOHO_CLIENT_ID")
	_ = v.BindEnv("zoho_client_secret", "ZOHO_CLIENT_SECRET")
	_ = v.BindEnv("zoho_refresh_token", "ZOHO_REFRESH_TOKEN")
	_ = v.BindEnv("zoho_auth_url", "ZOHO_AUTH_URL")
	_ = v.BindEnv("zoho_base_url", "ZOHO_SPRINTS_BASE_URL")
	_ = v.BindEnv("zoho_scopes", "ZOHO_SCOPES")
	_ = v.BindEnv("host", "HOST")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_json", "LOG_JSON")
	_ = v.BindEnv("trust_proxy", "TRUST_PROXY")
	_ = v.BindEnv("rate_burst", "RATE_BURST")
	_ = v.BindEnv("tracing.endpoint", "OTLP_ENDPOINT")
	_ = v.BindEnv("tracing.environment", "OTLP_ENVIRONMENT")
	_ = v.BindEnv("tracing.service_name", "OTLP_SERVICE_NAME")
}

// MarshalJSON masks sensitive fields so the config can be logged safely.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := alias(*c)
	masked.ZohoClientSecret = mask(masked.ZohoClientSecret)
	masked.ZohoRefreshToken = mask(masked.ZohoRefreshToken)
	return json.Marshal(masked)
}

// mask redacts a secret, keeping a short prefix for identification.
func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}
