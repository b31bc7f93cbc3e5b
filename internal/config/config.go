// Package config loads the application configuration from environment
// variables (prefix SHOPPULSE) and an optional YAML file, with struct
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "SHOPPULSE"

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	// MaxUploadBytes caps the size of an uploaded batch.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	// RateLimitRPS and RateLimitBurst configure the request limiter.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/shoppulse.log"`
}

// PathsConfig contains filesystem locations for inputs and reports.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"data/input"`
	ReportDir string `yaml:"report_dir" envconfig:"REPORT_DIR" default:"data/reports"`
}

// PipelineConfig carries the pipeline defaults used when a request does
// not override them.
type PipelineConfig struct {
	Query           string   `yaml:"query" envconfig:"QUERY" default:"캄프 카밍패드"`
	Method          string   `yaml:"method" envconfig:"METHOD" default:"iqr"`
	GroupCols       []string `yaml:"group_cols" envconfig:"GROUP_COLS" default:"query"`
	IncludeVariants bool     `yaml:"include_variants" envconfig:"INCLUDE_VARIANTS" default:"false"`
	UseAux          bool     `yaml:"use_aux" envconfig:"USE_AUX" default:"false"`
	AuxPct          float64  `yaml:"aux_pct" envconfig:"AUX_PCT" default:"50"`
	UpperQuantile   float64  `yaml:"upper_quantile" envconfig:"UPPER_QUANTILE" default:"0.75"`
}

// Load builds the configuration from struct defaults, SHOPPULSE_*
// environment variables, and an optional YAML file, in increasing
// precedence. The file wins because it is passed explicitly on the
// command line.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		if err := loadFile(configFile, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Pipeline.Method != "iqr" && c.Pipeline.Method != "quantile" {
		return fmt.Errorf("invalid pipeline method: %s", c.Pipeline.Method)
	}
	if c.Pipeline.AuxPct < 0 || c.Pipeline.AuxPct > 100 {
		return fmt.Errorf("aux_pct must be within [0, 100]: %v", c.Pipeline.AuxPct)
	}
	if c.Pipeline.UpperQuantile <= 0 || c.Pipeline.UpperQuantile > 1 {
		return fmt.Errorf("upper_quantile must be within (0, 1]: %v", c.Pipeline.UpperQuantile)
	}
	return nil
}
