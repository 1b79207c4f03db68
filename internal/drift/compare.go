package drift

// ComparisonStatus distinguishes a real test outcome from a feature that
// could not be tested at all.
type ComparisonStatus string

const (
	// StatusOK means the two-sample test ran and its verdict is meaningful.
	StatusOK ComparisonStatus = "ok"
	// StatusInsufficientData means one side had fewer than two values, so
	// the test was skipped. Such features are reported as not drifted but
	// must remain distinguishable from a genuine "no drift" result.
	StatusInsufficientData ComparisonStatus = "insufficient_data"
)

// FeatureComparisonResult holds the per-feature outcome of the two-sample
// Kolmogorov-Smirnov test.
type FeatureComparisonResult struct {
	Feature   string           `json:"feature"`
	Status    ComparisonStatus `json:"status"`
	Drifted   bool             `json:"drifted"`
	Statistic float64          `json:"statistic"`
	PValue    float64          `json:"p_value"`
	Threshold float64          `json:"threshold"`
}

// CompareSamples runs the KS test for each named feature, comparing its
// value column in the reference sample against the current sample. A feature
// drifts when the test's p-value falls below significance. Features with
// fewer than two values on either side are marked StatusInsufficientData.
//
// The result map holds exactly one entry per name in features. Identical
// inputs always produce identical results; there is no randomness anywhere
// in the comparison.
func CompareSamples(ref, cur FeatureSample, features []string, significance float64) map[string]FeatureComparisonResult {
	results := make(map[string]FeatureComparisonResult, len(features))
	for _, name := range features {
		refCol := ref.Column(name)
		curCol := cur.Column(name)

		if len(refCol) < 2 || len(curCol) < 2 {
			results[name] = FeatureComparisonResult{
				Feature:   name,
				Status:    StatusInsufficientData,
				Drifted:   false,
				Threshold: significance,
			}
			continue
		}

		d := ksStatistic(refCol, curCol)
		p := ksPValue(d, len(refCol), len(curCol))
		results[name] = FeatureComparisonResult{
			Feature:   name,
			Status:    StatusOK,
			Drifted:   p < significance,
			Statistic: d,
			PValue:    p,
			Threshold: significance,
		}
	}
	return results
}
