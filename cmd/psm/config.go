package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisConfig describes one matching run: where the data lives, which
// columns play which role, and what to render.
type AnalysisConfig struct {
	CSV                string   `yaml:"csv"`
	Covariates         []string `yaml:"covariates"`
	Treatment          string   `yaml:"treatment"`
	Outcome            string   `yaml:"outcome"`
	WithoutReplacement bool     `yaml:"without_replacement"`
	PlotDir            string   `yaml:"plot_dir"` // empty disables plotting
}

// LoadConfig reads and validates a YAML analysis config.
func LoadConfig(path string) (*AnalysisConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg AnalysisConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Covariates) == 0 {
		return nil, fmt.Errorf("config %s: at least one covariate is required", path)
	}
	if cfg.Treatment == "" || cfg.Outcome == "" {
		return nil, fmt.Errorf("config %s: treatment and outcome columns are required", path)
	}
	return &cfg, nil
}
