package drift

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFromColumn(name string, values []float64) FeatureSample {
	s := make(FeatureSample, len(values))
	for i, v := range values {
		s[i] = FeatureVector{name: v}
	}
	return s
}

func TestCompareSamplesShiftedDistributionDrifts(t *testing.T) {
	t.Parallel()

	ref := sampleFromColumn("brightness_mean", seq(0.10, 0.002, 25))
	cur := sampleFromColumn("brightness_mean", seq(0.60, 0.002, 25))

	results := CompareSamples(ref, cur, []string{"brightness_mean"}, 0.05)
	require.Len(t, results, 1)

	r := results["brightness_mean"]
	assert.Equal(t, StatusOK, r.Status)
	assert.True(t, r.Drifted)
	assert.InDelta(t, 1.0, r.Statistic, 1e-9)
	assert.Less(t, r.PValue, 0.05)
	assert.Equal(t, 0.05, r.Threshold)
}

func TestCompareSamplesSameDistributionDoesNotDrift(t *testing.T) {
	t.Parallel()

	col := seq(0.2, 0.01, 30)
	ref := sampleFromColumn("contrast", col)
	cur := sampleFromColumn("contrast", col)

	results := CompareSamples(ref, cur, []string{"contrast"}, 0.05)
	r := results["contrast"]
	assert.Equal(t, StatusOK, r.Status)
	assert.False(t, r.Drifted)
	assert.InDelta(t, 0.0, r.Statistic, 1e-9)
}

func TestCompareSamplesInsufficientData(t *testing.T) {
	t.Parallel()

	ref := sampleFromColumn("sharpness", []float64{0.5}) // one value only
	cur := sampleFromColumn("sharpness", seq(0.1, 0.01, 10))

	results := CompareSamples(ref, cur, []string{"sharpness"}, 0.05)
	r := results["sharpness"]
	assert.Equal(t, StatusInsufficientData, r.Status)
	assert.False(t, r.Drifted)
	assert.Zero(t, r.Statistic)
}

func TestCompareSamplesMissingFeatureIsInsufficient(t *testing.T) {
	t.Parallel()

	ref := sampleFromColumn("brightness_mean", seq(0.1, 0.01, 10))
	cur := sampleFromColumn("brightness_mean", seq(0.1, 0.01, 10))

	results := CompareSamples(ref, cur, []string{"brightness_mean", "contrast"}, 0.05)
	require.Len(t, results, 2)
	assert.Equal(t, StatusOK, results["brightness_mean"].Status)
	assert.Equal(t, StatusInsufficientData, results["contrast"].Status)
}

func TestCompareSamplesDeterministic(t *testing.T) {
	t.Parallel()

	ref := sampleFromColumn("brightness_mean", seq(0.1, 0.013, 40))
	cur := sampleFromColumn("brightness_mean", seq(0.15, 0.011, 35))

	a := CompareSamples(ref, cur, []string{"brightness_mean"}, 0.05)
	b := CompareSamples(ref, cur, []string{"brightness_mean"}, 0.05)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("comparison results differ between identical runs (-a +b):\n%s", diff)
	}
}

// seq returns n values starting at start with the given step.
func seq(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
