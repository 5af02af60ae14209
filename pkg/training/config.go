package training

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/montplusa/tictactoe-evolve/pkg/evolve"
)

// Config specifies one training run.
type Config struct {
	MaxGenerations int           `json:"max_generations"`
	TargetFitness  float64       `json:"target_fitness"`
	EasyPercent    int           `json:"easy_percent"`
	MediumPercent  int           `json:"medium_percent"`
	HardPercent    int           `json:"hard_percent"`
	Probes         int           `json:"probes"`          // calibration probes per generation
	WeightsPath    string        `json:"weights_path"`    // empty skips saving
	Seed           int64         `json:"seed"`            // 0 seeds from the clock
	ReportInterval int           `json:"report_interval"` // log every N generations, 0 disables
	GA             evolve.Config `json:"ga"`
}

func DefaultConfig() Config {
	return Config{
		MaxGenerations: 1000,
		TargetFitness:  0.99,
		EasyPercent:    25,
		MediumPercent:  25,
		HardPercent:    50,
		Probes:         10,
		WeightsPath:    "weights_network.zip",
		ReportInterval: 1,
		GA:             evolve.DefaultConfig(),
	}
}

// LoadConfig overlays the JSON file at path onto config.
func LoadConfig(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
