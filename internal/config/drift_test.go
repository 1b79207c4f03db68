package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.PerFeatureSignificance)
	assert.Equal(t, 0.5, cfg.ShareThreshold)
	assert.Equal(t, drift.DefaultFeatures(), cfg.Features)
	assert.Equal(t, 50, cfg.MinReferenceSamples)
	assert.Equal(t, 20, cfg.MinCurrentSamples)
}

func TestLoadTopLevelKeys(t *testing.T) {
	path := writeConfig(t, `
per_feature_significance: 0.01
share_threshold: 0.75
features:
  - brightness_mean
  - contrast
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.PerFeatureSignificance)
	assert.Equal(t, 0.75, cfg.ShareThreshold)
	assert.Equal(t, []string{"brightness_mean", "contrast"}, cfg.Features)
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.MinReferenceSamples)
}

func TestLoadNestedDriftSection(t *testing.T) {
	path := writeConfig(t, `
drift:
  min_reference_samples: 30
  min_current_samples: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.MinReferenceSamples)
	assert.Equal(t, 10, cfg.MinCurrentSamples)
	assert.Equal(t, 0.05, cfg.PerFeatureSignificance)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "share_threshold: 0.75\n")
	t.Setenv("DRIFTWATCH_SHARE_THRESHOLD", "0.25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.ShareThreshold)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*DriftConfig)
	}{
		{"significance zero", func(c *DriftConfig) { c.PerFeatureSignificance = 0 }},
		{"significance one", func(c *DriftConfig) { c.PerFeatureSignificance = 1 }},
		{"share threshold negative", func(c *DriftConfig) { c.ShareThreshold = -0.1 }},
		{"share threshold above one", func(c *DriftConfig) { c.ShareThreshold = 1.1 }},
		{"empty features", func(c *DriftConfig) { c.Features = nil }},
		{"unknown feature", func(c *DriftConfig) { c.Features = []string{"hue_entropy"} }},
		{"zero min reference", func(c *DriftConfig) { c.MinReferenceSamples = 0 }},
		{"zero min current", func(c *DriftConfig) { c.MinCurrentSamples = 0 }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateDefaultsPass(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestShareThresholdBoundsAreValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ShareThreshold = 0
	assert.NoError(t, cfg.Validate())
	cfg.ShareThreshold = 1
	assert.NoError(t, cfg.Validate())
}
