// Package config layers plandex settings: built-in defaults, an optional
// YAML file, the environment (including a .env file) and finally CLI flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/andrew/plandex-lite/pkg/llm"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "plandex.yaml"

// Config holds the runtime configuration.
type Config struct {
	Model     string          `yaml:"model"`
	Endpoint  string          `yaml:"endpoint"`
	Transport string          `yaml:"transport"`
	Timeout   time.Duration   `yaml:"timeout"`
	OutDir    string          `yaml:"out_dir"`
	DryRun    bool            `yaml:"dry_run"`
	PDF       bool            `yaml:"pdf"`
	Render    bool            `yaml:"render"`
	Verbose   bool            `yaml:"verbose"`
	Options   llm.ModelConfig `yaml:"options"`
	Chrome    string          `yaml:"chrome"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:     llm.DefaultModel,
		Endpoint:  llm.DefaultEndpoint,
		Transport: llm.TransportHTTP,
		OutDir:    ".",
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An explicit path must exist; the default file is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	// a missing .env file is not an error
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("OLLAMA_API_URL"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("PLANDEX_TRANSPORT"); v != "" {
		c.Transport = v
	}
	if v := os.Getenv("PLANDEX_OUT_DIR"); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv("PLANDEX_CHROME"); v != "" {
		c.Chrome = v
	}
	if v := os.Getenv("PLANDEX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: PLANDEX_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("PLANDEX_DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PLANDEX_DRY_RUN: %w", err)
		}
		c.DryRun = b
	}
	return nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.Model == "" {
		return errors.New("config: model is required")
	}
	if c.Endpoint == "" {
		return errors.New("config: endpoint is required")
	}
	switch c.Transport {
	case llm.TransportHTTP, llm.TransportSDK:
	default:
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	return nil
}

// ClientOptions converts the configuration for llm.NewClient.
func (c Config) ClientOptions() llm.Options {
	return llm.Options{
		Transport: c.Transport,
		Endpoint:  c.Endpoint,
		Model:     c.Model,
		Timeout:   c.Timeout,
		Config:    c.Options,
	}
}
