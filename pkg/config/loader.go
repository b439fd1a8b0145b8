package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if len(c.Discovery.Interfaces) == 0 {
		return fmt.Errorf("discovery.interfaces: at least one interface required")
	}

	seen := make(map[string]bool, len(c.Discovery.Interfaces))
	for i, name := range c.Discovery.Interfaces {
		if name == "" {
			return fmt.Errorf("discovery.interfaces[%d]: empty interface name", i)
		}
		if seen[name] {
			return fmt.Errorf("discovery.interfaces[%d]: duplicate interface '%s'", i, name)
		}
		seen[name] = true
	}
	return nil
}
