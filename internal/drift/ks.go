package drift

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ksStatistic returns the two-sample Kolmogorov-Smirnov statistic D for the
// given value columns. The inputs are copied and sorted; callers keep their
// original ordering.
func ksStatistic(x, y []float64) float64 {
	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)
	sort.Float64s(xs)
	sort.Float64s(ys)
	return stat.KolmogorovSmirnov(xs, nil, ys, nil)
}

// ksPValue returns the asymptotic two-sided p-value for a two-sample KS
// statistic d with sample sizes n1 and n2, using the Kolmogorov distribution
// with the standard small-sample correction:
//
//	ne     = n1*n2 / (n1+n2)
//	lambda = (sqrt(ne) + 0.12 + 0.11/sqrt(ne)) * d
//	p      = 2 * sum_{j>=1} (-1)^(j-1) * exp(-2 j² lambda²)
//
// The computation is fully deterministic.
func ksPValue(d float64, n1, n2 int) float64 {
	if n1 < 1 || n2 < 1 {
		return 1.0
	}
	if d <= 0 {
		return 1.0
	}
	if d >= 1 {
		return 0.0
	}

	ne := float64(n1) * float64(n2) / float64(n1+n2)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * d

	var sum float64
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2.0*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}

	p := 2.0 * sum
	if p < 0 {
		return 0.0
	}
	if p > 1 {
		return 1.0
	}
	return p
}
