package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
)

func histogramSamples() (drift.FeatureSample, drift.FeatureSample) {
	ref := make(drift.FeatureSample, 0, 20)
	cur := make(drift.FeatureSample, 0, 20)
	for i := 0; i < 20; i++ {
		v := 0.2 + float64(i)*0.01
		ref = append(ref, drift.FeatureVector{"brightness_mean": v})
		cur = append(cur, drift.FeatureVector{"brightness_mean": v * 2})
	}
	return ref, cur
}

func TestWriteHistogramsCreatesPNGs(t *testing.T) {
	t.Parallel()

	ref, cur := histogramSamples()
	dir := filepath.Join(t.TempDir(), "plots")
	require.NoError(t, WriteHistograms(ref, cur, []string{"brightness_mean"}, dir))

	info, err := os.Stat(filepath.Join(dir, "brightness_mean.png"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteHistogramsSkipsMissingFeature(t *testing.T) {
	t.Parallel()

	ref, cur := histogramSamples()
	dir := filepath.Join(t.TempDir(), "plots")
	require.NoError(t, WriteHistograms(ref, cur, []string{"brightness_mean", "contrast"}, dir))

	_, err := os.Stat(filepath.Join(dir, "contrast.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriterRendersAllConfiguredArtifacts(t *testing.T) {
	t.Parallel()

	ref, cur := histogramSamples()
	base := t.TempDir()
	w := &Writer{
		HTMLPath:     filepath.Join(base, "report.html"),
		HistogramDir: filepath.Join(base, "plots"),
		Features:     []string{"brightness_mean"},
	}

	require.NoError(t, w.WriteArtifacts(sampleReport(true), ref, cur))

	_, err := os.Stat(w.HTMLPath)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "plots", "brightness_mean.png"))
	assert.NoError(t, err)
}

func TestWriterHTMLFailureStillWritesHistograms(t *testing.T) {
	t.Parallel()

	ref, cur := histogramSamples()
	base := t.TempDir()
	w := &Writer{
		HTMLPath:     filepath.Join(base, "missing", "report.html"), // parent absent
		HistogramDir: filepath.Join(base, "plots"),
		Features:     []string{"brightness_mean"},
	}

	err := w.WriteArtifacts(sampleReport(true), ref, cur)
	require.Error(t, err)

	// the histogram side still ran
	_, statErr := os.Stat(filepath.Join(base, "plots", "brightness_mean.png"))
	assert.NoError(t, statErr)
}
