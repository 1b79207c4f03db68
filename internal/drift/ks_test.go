package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKSStatisticIdenticalSamples(t *testing.T) {
	t.Parallel()

	x := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	d := ksStatistic(x, x)
	assert.InDelta(t, 0.0, d, 1e-12)
}

func TestKSStatisticDisjointSamples(t *testing.T) {
	t.Parallel()

	x := []float64{0.1, 0.2, 0.3}
	y := []float64{10.1, 10.2, 10.3}
	d := ksStatistic(x, y)
	assert.InDelta(t, 1.0, d, 1e-12)
}

func TestKSStatisticLeavesInputsUnsorted(t *testing.T) {
	t.Parallel()

	x := []float64{0.5, 0.1, 0.3}
	y := []float64{0.4, 0.2, 0.6}
	_ = ksStatistic(x, y)
	assert.Equal(t, []float64{0.5, 0.1, 0.3}, x)
	assert.Equal(t, []float64{0.4, 0.2, 0.6}, y)
}

func TestKSPValueBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, ksPValue(0, 25, 25))
	assert.Equal(t, 0.0, ksPValue(1, 25, 25))
	assert.Equal(t, 1.0, ksPValue(0.5, 0, 25))

	p := ksPValue(0.5, 25, 25)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestKSPValueMonotoneInStatistic(t *testing.T) {
	t.Parallel()

	// Larger divergence must never raise the p-value.
	prev := 1.0
	for _, d := range []float64{0.1, 0.2, 0.4, 0.6, 0.8, 0.95} {
		p := ksPValue(d, 25, 25)
		assert.LessOrEqual(t, p, prev, "p-value must not increase with d=%g", d)
		prev = p
	}
}

func TestKSPValueDeterministic(t *testing.T) {
	t.Parallel()

	a := ksPValue(0.37, 40, 30)
	b := ksPValue(0.37, 40, 30)
	assert.Equal(t, a, b)
}
