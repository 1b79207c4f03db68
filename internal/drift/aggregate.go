package drift

// Decision is the aggregate drift verdict across all evaluated features.
type Decision struct {
	DriftDetected   bool
	DriftShare      float64
	DriftedFeatures []string
}

// Decide combines per-feature comparison results into an overall verdict.
// DriftShare is the fraction of evaluated features flagged as drifted;
// features with insufficient data count in the denominator as not drifted.
// The comparison against shareThreshold is inclusive, so a share exactly at
// the threshold declares drift. An empty result set yields share 0 and no
// drift. Pure and deterministic; no I/O.
//
// featureOrder fixes the ordering of DriftedFeatures so repeated runs over
// identical inputs produce identical output.
func Decide(results map[string]FeatureComparisonResult, featureOrder []string, shareThreshold float64) Decision {
	if len(results) == 0 {
		return Decision{DriftDetected: false, DriftShare: 0}
	}

	var drifted []string
	for _, name := range featureOrder {
		if r, ok := results[name]; ok && r.Drifted {
			drifted = append(drifted, name)
		}
	}

	share := float64(len(drifted)) / float64(len(results))
	return Decision{
		DriftDetected:   share >= shareThreshold,
		DriftShare:      share,
		DriftedFeatures: drifted,
	}
}
