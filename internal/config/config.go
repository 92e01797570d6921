package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "CARDIOSENSE_CONFIG"
	apiURLEnv      = "CARDIO_API_URL"
	databaseDSNEnv = "DATABASE_DSN"
	logLevelEnv    = "CARDIO_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Risk     RiskConfig     `yaml:"risk"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Warmup   WarmupConfig   `yaml:"warmup"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig describes the remote classifier service.
type APIConfig struct {
	BaseURL                 string `yaml:"baseUrl"`
	InferenceTimeoutSeconds int    `yaml:"inferenceTimeoutSeconds"`
	DeliveryTimeoutSeconds  int    `yaml:"deliveryTimeoutSeconds"`
}

// InferenceTimeout resolves the inference call budget. It is sized for a
// cold-started backend, not a typical request.
func (a APIConfig) InferenceTimeout() time.Duration {
	return time.Duration(a.InferenceTimeoutSeconds) * time.Second
}

// DeliveryTimeout resolves the report-delivery call budget.
func (a APIConfig) DeliveryTimeout() time.Duration {
	return time.Duration(a.DeliveryTimeoutSeconds) * time.Second
}

// RiskConfig holds the tier cut points. Defaults mirror observed backend
// behavior; the backend's own labels win when it supplies them.
type RiskConfig struct {
	LowThreshold  float64 `yaml:"lowThreshold"`
	HighThreshold float64 `yaml:"highThreshold"`
}

// DeliveryConfig tunes restricted/demo-mode detection.
type DeliveryConfig struct {
	RestrictedPhrases []string `yaml:"restrictedPhrases"`
}

// WarmupConfig controls the backend keep-warm health probe.
type WarmupConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"intervalMinutes"`
}

// Interval resolves the probe period.
func (w WarmupConfig) Interval() time.Duration {
	return time.Duration(w.IntervalMinutes) * time.Minute
}

// DatabaseConfig describes the optional Postgres history store. An empty DSN
// disables history entirely.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig selects the log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiURLEnv); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.API.BaseURL != "" {
		base.API.BaseURL = override.API.BaseURL
	}
	if override.API.InferenceTimeoutSeconds > 0 {
		base.API.InferenceTimeoutSeconds = override.API.InferenceTimeoutSeconds
	}
	if override.API.DeliveryTimeoutSeconds > 0 {
		base.API.DeliveryTimeoutSeconds = override.API.DeliveryTimeoutSeconds
	}

	if override.Risk.LowThreshold > 0 {
		base.Risk.LowThreshold = override.Risk.LowThreshold
	}
	if override.Risk.HighThreshold > 0 {
		base.Risk.HighThreshold = override.Risk.HighThreshold
	}

	if len(override.Delivery.RestrictedPhrases) > 0 {
		base.Delivery.RestrictedPhrases = override.Delivery.RestrictedPhrases
	}

	if override.Warmup.Enabled {
		base.Warmup.Enabled = true
	}
	if override.Warmup.IntervalMinutes > 0 {
		base.Warmup.IntervalMinutes = override.Warmup.IntervalMinutes
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:                 "https://cardio-fastapi-8ijy.onrender.com",
			InferenceTimeoutSeconds: 120,
			DeliveryTimeoutSeconds:  30,
		},
		Risk: RiskConfig{
			LowThreshold:  0.33,
			HighThreshold: 0.66,
		},
		Delivery: DeliveryConfig{
			RestrictedPhrases: []string{"testing emails", "demo mode"},
		},
		Warmup: WarmupConfig{
			Enabled:         false,
			IntervalMinutes: 10,
		},
		Database: DatabaseConfig{DSN: ""},
		Logging:  LoggingConfig{Level: "info"},
	}
}
