// Package config loads and validates application configuration from YAML
// files and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Identity      IdentityConfig      `yaml:"identity"`
	Pricing       PricingConfig       `yaml:"pricing"`
	Wizard        WizardConfig        `yaml:"wizard"`
	Draft         DraftConfig         `yaml:"draft"`
	Assist        AssistConfig        `yaml:"assist"`
	Scrape        ScrapeConfig        `yaml:"scrape"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// IdentityConfig describes bearer-token verification. The signing secret is
// read from the environment variable named by SecretEnv so that secrets
// never live in the YAML file.
type IdentityConfig struct {
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
	SecretEnv string `yaml:"secret_env"`
}

// PricingConfig describes the deterministic pricing engine settings.
type PricingConfig struct {
	// TaxRate is the regional sales-tax rate applied after retouching,
	// e.g. 0.0825.
	TaxRate float64 `yaml:"tax_rate"`
}

// WizardConfig describes wizard behavior settings.
type WizardConfig struct {
	// SuggestionStartLead is how far ahead of now an unparseable suggested
	// date lands.
	SuggestionStartLead time.Duration `yaml:"suggestion_start_lead"`
	// SuggestionEndOffset is the end-date offset derived from the start
	// date after an AI merge. The merge always derives the end date rather
	// than trusting the suggestion's own end time; pending product
	// confirmation this stays configurable instead of a constant.
	SuggestionEndOffset time.Duration `yaml:"suggestion_end_offset"`
	// MaxScenes caps the multi-select scene list.
	MaxScenes int `yaml:"max_scenes"`
}

// DraftConfig describes draft persistence settings.
type DraftConfig struct {
	// Driver is one of "memory", "redis", "postgres".
	Driver string `yaml:"driver"`
	// Namespace prefixes every draft key.
	Namespace string `yaml:"namespace"`
	// Debounce is the window that coalesces rapid edits into one write.
	Debounce time.Duration `yaml:"debounce"`
	// TTL bounds how long an abandoned draft survives (redis driver).
	TTL     time.Duration `yaml:"ttl"`
	AddrEnv string        `yaml:"addr_env"`
	DSNEnv  string        `yaml:"dsn_env"`
}

// AssistConfig describes the AI generation boundary.
type AssistConfig struct {
	Enabled bool `yaml:"enabled"`
	// Provider is "gemini" or "static" (deterministic canned suggestions,
	// for local development without credentials).
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	// RateLimit bounds generation calls per subject per window.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// ScrapeConfig describes the venue-page fetcher.
type ScrapeConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	RatePerHost  float64       `yaml:"rate_per_host"`
	RateBurst    int           `yaml:"rate_burst"`
	Retries      int           `yaml:"retries"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Exporter          string  `yaml:"exporter"`
	Endpoint          string  `yaml:"endpoint"`
	SamplingRate      float64 `yaml:"sampling_rate"`
	ForceSampleErrors bool    `yaml:"force_sample_errors"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Authorization", "Content-Type", "X-Correlation-Id"},
				MaxAge:         86400,
			},
		},
		Identity: IdentityConfig{
			SecretEnv: "WIZARD_JWT_SECRET",
		},
		Pricing: PricingConfig{
			TaxRate: 0.0825,
		},
		Wizard: WizardConfig{
			SuggestionStartLead: 2184 * time.Hour, // ~3 months
			SuggestionEndOffset: 3 * time.Hour,
			MaxScenes:           6,
		},
		Draft: DraftConfig{
			Driver:    "memory",
			Namespace: "wizard:draft",
			Debounce:  800 * time.Millisecond,
			TTL:       30 * 24 * time.Hour,
			AddrEnv:   "WIZARD_REDIS_ADDR",
			DSNEnv:    "WIZARD_DATABASE_URL",
		},
		Assist: AssistConfig{
			Enabled:    true,
			Provider:   "gemini",
			Model:      "gemini-2.5-flash",
			Timeout:    45 * time.Second,
			RateLimit:  10,
			RateWindow: time.Minute,
		},
		Scrape: ScrapeConfig{
			Timeout:      12 * time.Second,
			MaxBodyBytes: 2 << 20,
			RatePerHost:  1.5,
			RateBurst:    2,
			Retries:      2,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		errs = append(errs, "pricing.tax_rate must be in [0, 1)")
	}
	switch c.Draft.Driver {
	case "memory", "redis", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("draft.driver %q is not one of memory, redis, postgres", c.Draft.Driver))
	}
	if c.Draft.Debounce <= 0 {
		errs = append(errs, "draft.debounce must be positive")
	}
	if c.Wizard.SuggestionEndOffset <= 0 {
		errs = append(errs, "wizard.suggestion_end_offset must be positive")
	}
	if c.Wizard.MaxScenes < 1 {
		errs = append(errs, "wizard.max_scenes must be at least 1")
	}
	if c.Assist.Enabled {
		switch c.Assist.Provider {
		case "gemini", "static":
		default:
			errs = append(errs, fmt.Sprintf("assist.provider %q is not one of gemini, static", c.Assist.Provider))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads FASHIONOS_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FASHIONOS_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FASHIONOS_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("FASHIONOS_DRAFT_DRIVER"); v != "" {
		cfg.Draft.Driver = v
	}
	if v := os.Getenv("FASHIONOS_ASSIST_PROVIDER"); v != "" {
		cfg.Assist.Provider = v
	}
	if v := os.Getenv("FASHIONOS_PRICING_TAX_RATE"); v != "" {
		var rate float64
		if _, err := fmt.Sscanf(v, "%g", &rate); err == nil {
			cfg.Pricing.TaxRate = rate
		}
	}
}
