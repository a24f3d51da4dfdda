// Package config loads kernel configuration from a YAML file with
// environment-variable overrides applied in main.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taste-memory-kernel/internal/vault"
)

// Config is the kernel's full configuration.
type Config struct {
	// DataDir roots the blob store for vault and wisdom snapshots.
	DataDir string `yaml:"data_dir"`

	// SimilarityURL points at the AI-services sidecar. Empty disables
	// the semantic duplicate check (lexical-only comparison).
	SimilarityURL string `yaml:"similarity_url"`

	// NATSURL enables best-effort learn/promotion event publication.
	// Empty disables it.
	NATSURL string `yaml:"nats_url"`

	Promotion PromotionConfig `yaml:"promotion"`

	// Tiers overrides entries of the built-in tier table.
	Tiers map[vault.Tier]vault.TierConfig `yaml:"tiers"`
}

// PromotionConfig tunes the background promotion sweep.
type PromotionConfig struct {
	SweepInterval Duration `yaml:"sweep_interval"`
	Threshold     float64  `yaml:"threshold"`
}

// Duration decodes YAML durations written in Go's human-readable form,
// e.g. "15m" or "1h30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataDir: "data",
		Promotion: PromotionConfig{
			SweepInterval: Duration(15 * time.Minute),
			Threshold:     0.85,
		},
		Tiers: vault.DefaultTiers(),
	}
}

// Load reads the YAML config at path, layered over the defaults. A
// missing file returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	// Partial tier overrides keep the defaults for unnamed tiers.
	defaults := vault.DefaultTiers()
	for tier, tc := range defaults {
		if _, ok := cfg.Tiers[tier]; !ok {
			if cfg.Tiers == nil {
				cfg.Tiers = make(map[vault.Tier]vault.TierConfig)
			}
			cfg.Tiers[tier] = tc
		}
	}
	return cfg, nil
}
