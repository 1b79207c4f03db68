// Package config loads drift monitoring configuration by layering defaults,
// an optional YAML file, and DRIFTWATCH_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
)

// EnvPrefix is the prefix for environment-variable overrides, e.g.
// DRIFTWATCH_SHARE_THRESHOLD=0.6.
const EnvPrefix = "DRIFTWATCH_"

// DriftConfig holds the thresholds and feature list for one pipeline run.
// It is loaded once per invocation and passed explicitly through the stages;
// nothing mutates it after Load returns.
type DriftConfig struct {
	// PerFeatureSignificance is the KS-test significance level: a feature
	// drifts when its p-value falls below this.
	PerFeatureSignificance float64 `koanf:"per_feature_significance"`

	// ShareThreshold is the fraction of evaluated features that must drift
	// to declare overall drift. The comparison is inclusive.
	ShareThreshold float64 `koanf:"share_threshold"`

	// Features is the ordered list of feature names to evaluate.
	Features []string `koanf:"features"`

	// MinReferenceSamples and MinCurrentSamples are the minimum numbers of
	// valid images required on each side. Below either minimum the run
	// completes with a skipped (no-drift) report instead of testing noise.
	MinReferenceSamples int `koanf:"min_reference_samples"`
	MinCurrentSamples   int `koanf:"min_current_samples"`
}

// Default returns the configuration used when no file or env overrides are
// present.
func Default() *DriftConfig {
	return &DriftConfig{
		PerFeatureSignificance: 0.05,
		ShareThreshold:         0.5,
		Features:               drift.DefaultFeatures(),
		MinReferenceSamples:    50,
		MinCurrentSamples:      20,
	}
}

// Load builds a DriftConfig by layering, lowest precedence first: defaults,
// the YAML file at path (skipped when path is empty), and DRIFTWATCH_ env
// vars. YAML keys may sit at the top level or under a "drift:" section.
func Load(path string) (*DriftConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if k.Exists("drift") {
			k = k.Cut("drift")
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks threshold ranges and that every configured feature is one
// the extractor can compute.
func (c *DriftConfig) Validate() error {
	if c.PerFeatureSignificance <= 0 || c.PerFeatureSignificance >= 1 {
		return fmt.Errorf("per_feature_significance must be in (0, 1), got %g", c.PerFeatureSignificance)
	}
	if c.ShareThreshold < 0 || c.ShareThreshold > 1 {
		return fmt.Errorf("share_threshold must be in [0, 1], got %g", c.ShareThreshold)
	}
	if len(c.Features) == 0 {
		return fmt.Errorf("features list must not be empty")
	}
	for _, name := range c.Features {
		if !drift.KnownFeature(name) {
			return fmt.Errorf("unknown feature %q", name)
		}
	}
	if c.MinReferenceSamples < 1 {
		return fmt.Errorf("min_reference_samples must be positive, got %d", c.MinReferenceSamples)
	}
	if c.MinCurrentSamples < 1 {
		return fmt.Errorf("min_current_samples must be positive, got %d", c.MinCurrentSamples)
	}
	return nil
}
