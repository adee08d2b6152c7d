// Package config provides configuration management.
// Application configuration is accepted as JSON, YAML, or HCL, selected
// by file extension. Pricing configuration (base costs, formulas,
// multiplier tables, systems) loads separately, see pricing.go.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/viper"

	"platform-cost/internal/logging"
)

// envPrefix scopes environment-variable overrides (PLATFORMCOST_SERVER_ADDR etc.)
const envPrefix = "PLATFORMCOST"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version" mapstructure:"version"`

	// Pricing locates the pricing configuration
	Pricing PricingFileConfig `json:"pricing" yaml:"pricing" mapstructure:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output" mapstructure:"output"`

	// Server contains API server configuration
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// PricingFileConfig locates and scopes the pricing configuration file
type PricingFileConfig struct {
	// Path is the pricing configuration file
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Currency is the display currency code
	Currency string `json:"currency" yaml:"currency" mapstructure:"currency"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json, markdown)
	DefaultFormat string `json:"default_format" yaml:"default_format" mapstructure:"default_format"`

	// ShowBreakdown shows the per-service percentage breakdown
	ShowBreakdown bool `json:"show_breakdown" yaml:"show_breakdown" mapstructure:"show_breakdown"`

	// Precision is the number of decimal places for displayed costs
	Precision int `json:"precision" yaml:"precision" mapstructure:"precision"`
}

// ServerConfig contains API server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingFileConfig{
			Path:     "pricing.yaml",
			Currency: "USD",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowBreakdown: true,
			Precision:     2,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, chosen by extension. A missing
// file yields the defaults; a malformed file is an error. Environment
// variables with the PLATFORMCOST_ prefix override YAML settings.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".hcl":
		return loadHCL(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

func loadJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

func loadYAML(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}
	return config, nil
}

// hclConfig mirrors Config with HCL tags; hclsimple wants its own
// struct shape (labeled blocks, optional attributes).
type hclConfig struct {
	Version string      `hcl:"version,optional"`
	Pricing *hclPricing `hcl:"pricing,block"`
	Output  *hclOutput  `hcl:"output,block"`
	Server  *hclServer  `hcl:"server,block"`
	Logging *hclLogging `hcl:"logging,block"`
}

type hclPricing struct {
	Path     string `hcl:"path,optional"`
	Currency string `hcl:"currency,optional"`
}

type hclOutput struct {
	DefaultFormat string `hcl:"default_format,optional"`
	ShowBreakdown *bool  `hcl:"show_breakdown,optional"`
	Precision     *int   `hcl:"precision,optional"`
}

type hclServer struct {
	Addr string `hcl:"addr,optional"`
}

type hclLogging struct {
	Level       string `hcl:"level,optional"`
	Format      string `hcl:"format,optional"`
	Output      string `hcl:"output,optional"`
	Development *bool  `hcl:"development,optional"`
}

func loadHCL(path string) (*Config, error) {
	var raw hclConfig
	if err := hclsimple.DecodeFile(path, nil, &raw); err != nil {
		return nil, err
	}

	config := Default()
	if raw.Version != "" {
		config.Version = raw.Version
	}
	if raw.Pricing != nil {
		if raw.Pricing.Path != "" {
			config.Pricing.Path = raw.Pricing.Path
		}
		if raw.Pricing.Currency != "" {
			config.Pricing.Currency = raw.Pricing.Currency
		}
	}
	if raw.Output != nil {
		if raw.Output.DefaultFormat != "" {
			config.Output.DefaultFormat = raw.Output.DefaultFormat
		}
		if raw.Output.ShowBreakdown != nil {
			config.Output.ShowBreakdown = *raw.Output.ShowBreakdown
		}
		if raw.Output.Precision != nil {
			config.Output.Precision = *raw.Output.Precision
		}
	}
	if raw.Server != nil && raw.Server.Addr != "" {
		config.Server.Addr = raw.Server.Addr
	}
	if raw.Logging != nil {
		if raw.Logging.Level != "" {
			config.Logging.Level = raw.Logging.Level
		}
		if raw.Logging.Format != "" {
			config.Logging.Format = raw.Logging.Format
		}
		if raw.Logging.Output != "" {
			config.Logging.Output = raw.Logging.Output
		}
		if raw.Logging.Development != nil {
			config.Logging.Development = *raw.Logging.Development
		}
	}
	return config, nil
}

// Save saves configuration to a file as JSON
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
