// Package config handles configuration loading for tools built on the
// client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so credentials can be
// injected at runtime instead of living in the file.
//
// # Example Configuration
//
//	zuora:
//	  username: ${ZUORA_USERNAME}
//	  password: ${ZUORA_PASSWORD}
//	  sandbox: true
//
//	logging:
//	  debug: false
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rayjohnson/zuora/pkg/zuora"
)

// Config is the root configuration structure
type Config struct {
	Zuora   ZuoraConfig   `yaml:"zuora"`
	Logging LoggingConfig `yaml:"logging"`
}

// ZuoraConfig holds credentials and environment selection
type ZuoraConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Sandbox  bool   `yaml:"sandbox"`

	// Endpoint overrides the environment-derived endpoint URL
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Zuora.Username == "" {
		return fmt.Errorf("zuora.username is required")
	}
	if c.Zuora.Password == "" {
		return fmt.Errorf("zuora.password is required")
	}
	return nil
}

// ClientConfig converts the file configuration into a client Config.
func (c *Config) ClientConfig() zuora.Config {
	return zuora.Config{
		Username: c.Zuora.Username,
		Password: c.Zuora.Password,
		Sandbox:  c.Zuora.Sandbox,
		Endpoint: c.Zuora.Endpoint,
		Log:      c.Logging.Debug,
	}
}
