// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhetorlabs/rhetor/internal/core"
	"github.com/rhetorlabs/rhetor/internal/provider"
)

// Config represents the application configuration.
type Config struct {
	Defaults  DefaultsConfig            `yaml:"defaults"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Storage   StorageConfig             `yaml:"storage,omitempty"`
	Server    ServerConfig              `yaml:"server,omitempty"`
	Log       LogConfig                 `yaml:"log,omitempty"`
}

// DefaultsConfig holds default debate settings.
type DefaultsConfig struct {
	Rounds       int    `yaml:"rounds"`
	FirstSpeaker string `yaml:"first_speaker"`
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
}

// ProviderConfig holds provider-specific settings.
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url,omitempty"`
	APIKey       string        `yaml:"api_key,omitempty"`
	DefaultModel string        `yaml:"default_model,omitempty"`
	Models       []string      `yaml:"models,omitempty"`
	Temperature  float64       `yaml:"temperature,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	Enabled      bool          `yaml:"enabled"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig holds the plain-text running log settings.
type LogConfig struct {
	File string `yaml:"file,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Rounds:       8,
			FirstSpeaker: string(core.RoleScientist),
			Provider:     "gemini",
			Model:        "",
		},
		Providers: map[string]ProviderConfig{
			"gemini": {
				BaseURL:      "https://generativelanguage.googleapis.com/v1beta",
				DefaultModel: "gemini-2.0-flash",
				Models:       []string{"gemini-2.0-flash", "gemini-1.5-pro"},
				Temperature:  0.7,
				Timeout:      2 * time.Minute,
				Enabled:      true,
			},
			"openai": {
				BaseURL:      "https://api.openai.com/v1",
				DefaultModel: "gpt-4o-mini",
				Models:       []string{"gpt-4o", "gpt-4o-mini"},
				Temperature:  0.7,
				Timeout:      2 * time.Minute,
				Enabled:      true,
			},
			"mock": {
				DefaultModel: "mock-v1",
				Timeout:      time.Minute,
				Enabled:      true,
			},
		},
		Server: ServerConfig{
			Port: 8184,
		},
		Log: LogConfig{
			File: "debate_log.txt",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file, proceed with defaults
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Merge with defaults for any missing providers
	defaultCfg := Default()
	for name, defaultProvider := range defaultCfg.Providers {
		if _, exists := cfg.Providers[name]; !exists {
			cfg.Providers[name] = defaultProvider
		}
	}

	// Apply .env and process environment overrides
	ApplyEnvOverrides(cfg, LoadEnv(".env"))

	return cfg, nil
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetProvider returns the configuration for a provider.
func (c *Config) GetProvider(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// ToProviderConfig converts a ProviderConfig to provider.Config.
func (p ProviderConfig) ToProviderConfig(name string) provider.Config {
	return provider.Config{
		Name:         name,
		BaseURL:      p.BaseURL,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		Models:       p.Models,
		Temperature:  p.Temperature,
		Timeout:      p.Timeout,
	}
}

// createProviderFromName creates a provider instance based on the provider name.
func createProviderFromName(name string, cfg provider.Config) (provider.Provider, error) {
	switch name {
	case "gemini":
		return provider.NewGemini(cfg), nil
	case "openai":
		return provider.NewOpenAI(cfg), nil
	case "mock":
		return provider.NewMock(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

// CreateRegistry creates a provider registry from this configuration.
func (c *Config) CreateRegistry() (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for name, provCfg := range c.Providers {
		if !provCfg.Enabled {
			continue
		}

		p, err := createProviderFromName(name, provCfg.ToProviderConfig(name))
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
		}

		registry.Register(p)
	}

	return registry, nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rhetor.yaml"
	}
	return filepath.Join(home, ".rhetor", "config.yaml")
}

// DefaultDBPath returns the session database path.
func (c *Config) DefaultDBPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "rhetor.db"
	}
	return filepath.Join(home, ".rhetor", "rhetor.db")
}
