package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	enneadapi "ennead/pkg/ennead"
)

type fileConfig struct {
	Env           string  `toml:"env"`
	Estimator     string  `toml:"estimator"`
	EnsembleSize  int     `toml:"ensemble_size"`
	PriorScale    float64 `toml:"prior_scale"`
	Aggregation   string  `toml:"aggregation"`
	Seed          int64   `toml:"seed"`
	Steps         int     `toml:"steps"`
	RoundInterval int     `toml:"round_interval"`
	Workers       int     `toml:"workers"`
	LR            float64 `toml:"lr"`
	Momentum      float64 `toml:"momentum"`
	Gamma         float64 `toml:"gamma"`
	ValidateSteps int     `toml:"validate_steps"`
}

// loadTrainConfig overlays only the keys present in the file onto base, so
// flag values survive for everything the file leaves out.
func loadTrainConfig(path string, base enneadapi.TrainRequest) (enneadapi.TrainRequest, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return enneadapi.TrainRequest{}, fmt.Errorf("load train config: %w", err)
	}

	cfg := base
	if meta.IsDefined("env") {
		cfg.Env = strings.TrimSpace(raw.Env)
	}
	if meta.IsDefined("estimator") {
		cfg.Estimator = strings.TrimSpace(raw.Estimator)
	}
	if meta.IsDefined("ensemble_size") {
		cfg.EnsembleSize = raw.EnsembleSize
	}
	if meta.IsDefined("prior_scale") {
		cfg.PriorScale = raw.PriorScale
	}
	if meta.IsDefined("aggregation") {
		cfg.Aggregation = strings.TrimSpace(raw.Aggregation)
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if meta.IsDefined("steps") {
		cfg.Steps = raw.Steps
	}
	if meta.IsDefined("round_interval") {
		cfg.RoundInterval = raw.RoundInterval
	}
	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("lr") {
		cfg.LR = raw.LR
	}
	if meta.IsDefined("momentum") {
		cfg.Momentum = raw.Momentum
	}
	if meta.IsDefined("gamma") {
		cfg.Gamma = raw.Gamma
	}
	if meta.IsDefined("validate_steps") {
		cfg.ValidateSteps = raw.ValidateSteps
	}
	return cfg, nil
}
