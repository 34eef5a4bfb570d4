package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Inputs    InputsConfig    `yaml:"inputs"`
	Output    OutputConfig    `yaml:"output"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Registry  RegistryConfig  `yaml:"registry"`
	RunLog    RunLogConfig    `yaml:"run_log"`
}

type InputsConfig struct {
	Survey   string `yaml:"survey"`
	Registry string `yaml:"registry"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir"`
	XMLBatches bool   `yaml:"xml_batches"`
}

type NormalizeConfig struct {
	// KeepIncomplete keeps survey rows with missing item responses instead
	// of dropping them. Off by default: incomplete rows cannot be scored.
	KeepIncomplete bool `yaml:"keep_incomplete"`
}

type RegistryConfig struct {
	// Programs is the admissions program allow-list. Empty means the
	// built-in default (Residential, PHP + Room and Board).
	Programs []string `yaml:"programs"`
	// AsOf overrides the run's reference date (YYYY-MM-DD), used as the
	// discharge date for still-admitted clients and in output filenames.
	// Empty means today.
	AsOf string `yaml:"as_of"`
}

type RunLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)
	return &cfg, nil
}

func LoadFromEnv() *Config {
	cfg := &Config{}
	setDefaults(cfg)

	if survey := os.Getenv("OUTCOMESYNC_SURVEY"); survey != "" {
		cfg.Inputs.Survey = survey
	}
	if registry := os.Getenv("OUTCOMESYNC_REGISTRY"); registry != "" {
		cfg.Inputs.Registry = registry
	}
	if dir := os.Getenv("OUTCOMESYNC_OUT"); dir != "" {
		cfg.Output.Dir = dir
	}

	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./import_ready"
	}
	if cfg.RunLog.Dir == "" {
		cfg.RunLog.Dir = "./data"
	}
}
