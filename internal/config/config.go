// Package config provides runtime configuration for hostwatch.
// It uses Viper to load settings from files and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for hostwatch.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────────────
	ServerHost string `mapstructure:"server_host"`
	ServerPort int    `mapstructure:"server_port"`
	DBPath     string `mapstructure:"db_path"`

	// ── Collector ────────────────────────────────────────────────────────────
	// CollectInterval: seconds between sampling cycles.
	CollectInterval int `mapstructure:"collect_interval_seconds"`
	// MaxSamples: count-bounded retention for the sample store; 0 = unlimited.
	MaxSamples int `mapstructure:"max_samples"`

	// ── Alert thresholds (initial registry values, percent) ──────────────────
	CPULimit    float64 `mapstructure:"cpu_limit"`
	MemoryLimit float64 `mapstructure:"memory_limit"`

	// ── Sessions ─────────────────────────────────────────────────────────────
	// SessionTTL: seconds a login token stays valid.
	SessionTTL int `mapstructure:"session_ttl_seconds"`
}

// Load reads config from file (./config.yaml or ~/.hostwatch/config.yaml)
// and falls back to smart defaults. Environment variables with prefix HWATCH_
// override file values.
func Load() (*Config, error) {
	v := viper.New()

	// --- Smart Defaults ---
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 5050)
	v.SetDefault("db_path", "hostwatch.db")

	v.SetDefault("collect_interval_seconds", 5)
	v.SetDefault("max_samples", 0)

	v.SetDefault("cpu_limit", 80.0)
	v.SetDefault("memory_limit", 80.0)

	v.SetDefault("session_ttl_seconds", 3600)

	// --- Config file ---
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.hostwatch")
	if err := v.ReadInConfig(); err != nil {
		// config file is optional; ignore "not found" errors
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// --- Environment Variables ---
	v.SetEnvPrefix("HWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
