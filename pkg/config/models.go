package config

type Config struct {
	Logging   Logging   `yaml:"logging"`
	Discovery Discovery `yaml:"discovery"`
	Metrics   Metrics   `yaml:"metrics,omitempty"`
}

type Logging struct {
	Format     string            `yaml:"format"`
	Level      string            `yaml:"level"`
	Components map[string]string `yaml:"components,omitempty"`
}

type Discovery struct {
	Interfaces []string `yaml:"interfaces"`
}

type Metrics struct {
	Address string `yaml:"address,omitempty"`
}
