package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ligustah/biofetch/internal/progress"
)

// Default endpoints.
const (
	DefaultStructureURL = "https://files.rcsb.org/download/"
	DefaultEntrezURL    = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
)

// Config defines configuration for biofetch.
type Config struct {
	StructureURL     string
	Entrez           EntrezConfig
	SequenceDir      string
	CombinedName     string
	CreateDirs       bool
	Seed             uint64
	ValidateAlphabet bool
	MaxBodySize      int64
	Timeout          time.Duration
	Progress         bool
	Retry            RetryConfig
	Log              LogConfig
}

// EntrezConfig identifies the caller to NCBI E-utilities.
type EntrezConfig struct {
	BaseURL string
	Email   string
	Tool    string
	APIKey  string
}

// RetryConfig defines retry behavior. Zero attempts disables retries.
type RetryConfig struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		StructureURL: DefaultStructureURL,
		Entrez: EntrezConfig{
			BaseURL: DefaultEntrezURL,
			Tool:    "biofetch",
		},
		SequenceDir:  "sequences",
		CombinedName: "seq",
		MaxBodySize:  64 * 1024 * 1024, // 64MB
		Timeout:      30 * time.Second,
		Retry: RetryConfig{
			Attempts:   0,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// fileConfig is used for unmarshaling with string sizes and durations.
type fileConfig struct {
	StructureURL     string          `yaml:"structure_url" toml:"structure_url"`
	Entrez           fileEntrez      `yaml:"entrez" toml:"entrez"`
	SequenceDir      string          `yaml:"sequence_dir" toml:"sequence_dir"`
	CombinedName     string          `yaml:"combined_name" toml:"combined_name"`
	CreateDirs       bool            `yaml:"create_dirs" toml:"create_dirs"`
	Seed             uint64          `yaml:"seed" toml:"seed"`
	ValidateAlphabet bool            `yaml:"validate_alphabet" toml:"validate_alphabet"`
	MaxBodySize      string          `yaml:"max_body_size" toml:"max_body_size"`
	Timeout          string          `yaml:"timeout" toml:"timeout"`
	Progress         bool            `yaml:"progress" toml:"progress"`
	Retry            fileRetryConfig `yaml:"retry" toml:"retry"`
	Log              fileLogConfig   `yaml:"log" toml:"log"`
}

type fileEntrez struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	Email   string `yaml:"email" toml:"email"`
	Tool    string `yaml:"tool" toml:"tool"`
	APIKey  string `yaml:"api_key" toml:"api_key"`
}

type fileRetryConfig struct {
	Attempts   int    `yaml:"attempts" toml:"attempts"`
	Backoff    string `yaml:"backoff" toml:"backoff"`
	MaxBackoff string `yaml:"max_backoff" toml:"max_backoff"`
}

type fileLogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// LoadFromFile loads configuration from a YAML file, or a TOML file when
// the path ends in ".toml".
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if fc.StructureURL != "" {
		cfg.StructureURL = fc.StructureURL
	}
	if fc.Entrez.BaseURL != "" {
		cfg.Entrez.BaseURL = fc.Entrez.BaseURL
	}
	if fc.Entrez.Email != "" {
		cfg.Entrez.Email = fc.Entrez.Email
	}
	if fc.Entrez.Tool != "" {
		cfg.Entrez.Tool = fc.Entrez.Tool
	}
	if fc.Entrez.APIKey != "" {
		cfg.Entrez.APIKey = fc.Entrez.APIKey
	}
	if fc.SequenceDir != "" {
		cfg.SequenceDir = fc.SequenceDir
	}
	if fc.CombinedName != "" {
		cfg.CombinedName = fc.CombinedName
	}
	cfg.CreateDirs = fc.CreateDirs
	cfg.Seed = fc.Seed
	cfg.ValidateAlphabet = fc.ValidateAlphabet
	cfg.Progress = fc.Progress
	if fc.MaxBodySize != "" {
		size, err := progress.ParseBytes(fc.MaxBodySize)
		if err != nil {
			return Config{}, fmt.Errorf("parse max_body_size: %w", err)
		}
		cfg.MaxBodySize = size
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = fc.Retry.Attempts
	}
	if fc.Retry.Backoff != "" {
		d, err := time.ParseDuration(fc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if fc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(fc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}
	if fc.Log.Level != "" {
		cfg.Log.Level = fc.Log.Level
	}
	if fc.Log.Format != "" {
		cfg.Log.Format = fc.Log.Format
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the BIOFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("BIOFETCH_STRUCTURE_URL"); v != "" {
		c.StructureURL = v
	}
	if v := os.Getenv("BIOFETCH_ENTREZ_URL"); v != "" {
		c.Entrez.BaseURL = v
	}
	if v := os.Getenv("BIOFETCH_ENTREZ_EMAIL"); v != "" {
		c.Entrez.Email = v
	}
	if v := os.Getenv("BIOFETCH_ENTREZ_TOOL"); v != "" {
		c.Entrez.Tool = v
	}
	if v := os.Getenv("BIOFETCH_ENTREZ_API_KEY"); v != "" {
		c.Entrez.APIKey = v
	}
	if v := os.Getenv("BIOFETCH_SEQUENCE_DIR"); v != "" {
		c.SequenceDir = v
	}
	if v := os.Getenv("BIOFETCH_COMBINED_NAME"); v != "" {
		c.CombinedName = v
	}
	if v := os.Getenv("BIOFETCH_CREATE_DIRS"); v != "" {
		c.CreateDirs = v == "true" || v == "1"
	}
	if v := os.Getenv("BIOFETCH_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse BIOFETCH_SEED: %w", err)
		}
		c.Seed = n
	}
	if v := os.Getenv("BIOFETCH_VALIDATE_ALPHABET"); v != "" {
		c.ValidateAlphabet = v == "true" || v == "1"
	}
	if v := os.Getenv("BIOFETCH_MAX_BODY_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse BIOFETCH_MAX_BODY_SIZE: %w", err)
		}
		c.MaxBodySize = size
	}
	if v := os.Getenv("BIOFETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BIOFETCH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("BIOFETCH_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("BIOFETCH_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BIOFETCH_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("BIOFETCH_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BIOFETCH_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("BIOFETCH_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BIOFETCH_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}
	if v := os.Getenv("BIOFETCH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BIOFETCH_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.StructureURL == "" {
		return errors.New("config: structure_url is required")
	}
	if c.Entrez.BaseURL == "" {
		return errors.New("config: entrez.base_url is required")
	}
	if c.SequenceDir == "" {
		return errors.New("config: sequence_dir is required")
	}
	if c.CombinedName == "" {
		return errors.New("config: combined_name is required")
	}
	if c.MaxBodySize < 0 {
		return errors.New("config: max_body_size must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry.attempts must not be negative")
	}
	if c.Retry.Attempts > 0 && c.Retry.Backoff <= 0 {
		return errors.New("config: retry.backoff must be positive when retries are enabled")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// ValidateRemote checks the settings needed to talk to NCBI Entrez.
func (c *Config) ValidateRemote() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Entrez.Email == "" {
		return errors.New("config: entrez.email is required for remote sequence fetches")
	}
	if !strings.Contains(c.Entrez.Email, "@") {
		return fmt.Errorf("config: entrez.email %q is not an email address", c.Entrez.Email)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.StructureURL != "" {
		c.StructureURL = override.StructureURL
	}
	if override.Entrez.BaseURL != "" {
		c.Entrez.BaseURL = override.Entrez.BaseURL
	}
	if override.Entrez.Email != "" {
		c.Entrez.Email = override.Entrez.Email
	}
	if override.Entrez.Tool != "" {
		c.Entrez.Tool = override.Entrez.Tool
	}
	if override.Entrez.APIKey != "" {
		c.Entrez.APIKey = override.Entrez.APIKey
	}
	if override.SequenceDir != "" {
		c.SequenceDir = override.SequenceDir
	}
	if override.CombinedName != "" {
		c.CombinedName = override.CombinedName
	}
	if override.CreateDirs {
		c.CreateDirs = override.CreateDirs
	}
	if override.Seed != 0 {
		c.Seed = override.Seed
	}
	if override.ValidateAlphabet {
		c.ValidateAlphabet = override.ValidateAlphabet
	}
	if override.MaxBodySize != 0 {
		c.MaxBodySize = override.MaxBodySize
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	if override.Log.Level != "" {
		c.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		c.Log.Format = override.Log.Format
	}
	return c
}
