package drift

import (
	"time"

	"github.com/google/uuid"
)

// Report is the immutable result of one pipeline run.
//
// Invariants: DriftShare == len(DriftedFeatures) / len(PerFeature), and
// DriftDetected == (DriftShare >= the configured share threshold). A skipped
// run (too few valid images on either side) carries Skipped=true with a
// no-drift verdict so callers can tell it apart from a real negative.
type Report struct {
	RunID           string                             `json:"run_id"`
	DriftDetected   bool                               `json:"drift_detected"`
	DriftShare      float64                            `json:"drift_share"`
	DriftedFeatures []string                           `json:"drifted_features"`
	PerFeature      map[string]FeatureComparisonResult `json:"per_feature"`
	Skipped         bool                               `json:"skipped"`
	ReferenceCount  int                                `json:"reference_count"`
	CurrentCount    int                                `json:"current_count"`
	GeneratedAt     time.Time                          `json:"generated_at"`
}

// NewReport assembles a Report from the aggregate decision and the
// per-feature results, stamping it with a fresh run ID and a UTC timestamp.
func NewReport(dec Decision, results map[string]FeatureComparisonResult, refCount, curCount int) *Report {
	drifted := dec.DriftedFeatures
	if drifted == nil {
		drifted = []string{}
	}
	return &Report{
		RunID:           uuid.New().String(),
		DriftDetected:   dec.DriftDetected,
		DriftShare:      dec.DriftShare,
		DriftedFeatures: drifted,
		PerFeature:      results,
		ReferenceCount:  refCount,
		CurrentCount:    curCount,
		GeneratedAt:     time.Now().UTC(),
	}
}

// NewSkippedReport builds the no-drift report returned when either sample
// has too few valid images for the statistical tests to be meaningful.
func NewSkippedReport(refCount, curCount int) *Report {
	return &Report{
		RunID:           uuid.New().String(),
		DriftDetected:   false,
		DriftShare:      0,
		DriftedFeatures: []string{},
		PerFeature:      map[string]FeatureComparisonResult{},
		Skipped:         true,
		ReferenceCount:  refCount,
		CurrentCount:    curCount,
		GeneratedAt:     time.Now().UTC(),
	}
}
