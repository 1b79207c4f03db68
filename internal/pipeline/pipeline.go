// Package pipeline runs one drift-monitoring invocation end to end:
// extract features, compare distributions, aggregate, build the report, and
// conditionally trigger retraining.
//
// This package is the composition root: it imports drift, config and the
// adapter interfaces below, but none of those packages import pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/moseskim1027/visionops-defect-detection/internal/config"
	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
	"github.com/moseskim1027/visionops-defect-detection/internal/monitoring"
)

// Stage names one phase of a pipeline run. Stages execute strictly in order
// for one invocation; none may be skipped.
type Stage string

const (
	StageIdle              Stage = "Idle"
	StageExtracting        Stage = "ExtractingFeatures"
	StageComparing         Stage = "ComparingDistributions"
	StageAggregating       Stage = "Aggregating"
	StageReportReady       Stage = "ReportReady"
	StageTriggeringRetrain Stage = "TriggeringRetrain"
	StageDone              Stage = "Done"
	StageFailed            Stage = "Failed"
)

// RetrainTrigger starts a downstream training run for a drift report.
// Implementations must be safe to retry: the report's run ID serves as the
// idempotency key.
type RetrainTrigger interface {
	TriggerRetraining(ctx context.Context, report *drift.Report) (runID string, err error)
}

// ReportSink persists a finished report. Sink failures are artifact
// failures: logged, never fatal to the run.
type ReportSink interface {
	SaveReport(report *drift.Report) error
}

// ArtifactWriter renders optional human-readable artifacts (HTML summary,
// histogram plots) from the finished report and the raw samples. Rendering
// must not alter the report; failures are logged, never fatal.
type ArtifactWriter interface {
	WriteArtifacts(report *drift.Report, ref, cur drift.FeatureSample) error
}

// TriggerError wraps a failed retraining trigger so the scheduler can retry
// just the trigger without re-running the drift computation. It is a
// distinct failure class from both InputError and a "no drift" verdict.
type TriggerError struct {
	Report *drift.Report
	Err    error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("retraining trigger failed for run %s: %v", e.Report.RunID, e.Err)
}

func (e *TriggerError) Unwrap() error { return e.Err }

// Runner wires one pipeline invocation. Config is required; Trigger, Sink
// and Artifacts are optional adapters.
type Runner struct {
	Config    *config.DriftConfig
	Trigger   RetrainTrigger
	Sink      ReportSink
	Artifacts ArtifactWriter

	stage Stage
}

// NewRunner returns an idle Runner for the given configuration.
func NewRunner(cfg *config.DriftConfig) *Runner {
	return &Runner{Config: cfg, stage: StageIdle}
}

// Stage returns the stage the last (or current) run reached.
func (r *Runner) Stage() Stage { return r.stage }

func (r *Runner) transition(next Stage) {
	monitoring.Logf("pipeline: %s -> %s", r.stage, next)
	r.stage = next
}

// Run executes one drift check comparing currentDir against referenceDir.
//
// On success the returned Report is complete even when artifacts failed to
// write. A nil error means the run reached Done: either no drift, or drift
// with a successful trigger. A *drift.InputError means the run failed before
// any statistics were computed. A *TriggerError carries the finished report
// so callers can retry the trigger alone.
func (r *Runner) Run(ctx context.Context, referenceDir, currentDir string) (*drift.Report, error) {
	r.stage = StageIdle

	refPaths, err := listInput(referenceDir, "reference")
	if err != nil {
		r.transition(StageFailed)
		return nil, err
	}
	curPaths, err := listInput(currentDir, "current")
	if err != nil {
		r.transition(StageFailed)
		return nil, err
	}

	r.transition(StageExtracting)
	refSample, refSkipped := drift.ExtractFeatures(refPaths)
	curSample, curSkipped := drift.ExtractFeatures(curPaths)
	if refSkipped > 0 || curSkipped > 0 {
		monitoring.Logf("pipeline: skipped %d reference and %d current images", refSkipped, curSkipped)
	}
	if len(refSample) == 0 {
		r.transition(StageFailed)
		return nil, &drift.InputError{Dir: referenceDir, Reason: "no decodable images"}
	}
	if len(curSample) == 0 {
		r.transition(StageFailed)
		return nil, &drift.InputError{Dir: currentDir, Reason: "no decodable images"}
	}

	// Below the minimum sample counts the KS test would only measure noise.
	// The run still completes, with a skipped no-drift report.
	if len(refSample) < r.Config.MinReferenceSamples || len(curSample) < r.Config.MinCurrentSamples {
		monitoring.Logf("pipeline: insufficient samples (ref=%d min=%d, cur=%d min=%d), skipping tests",
			len(refSample), r.Config.MinReferenceSamples, len(curSample), r.Config.MinCurrentSamples)
		report := drift.NewSkippedReport(len(refSample), len(curSample))
		r.transition(StageReportReady)
		r.finishArtifacts(report, refSample, curSample)
		r.transition(StageDone)
		return report, nil
	}

	r.transition(StageComparing)
	results := drift.CompareSamples(refSample, curSample, r.Config.Features, r.Config.PerFeatureSignificance)

	r.transition(StageAggregating)
	decision := drift.Decide(results, r.Config.Features, r.Config.ShareThreshold)

	report := drift.NewReport(decision, results, len(refSample), len(curSample))
	r.transition(StageReportReady)
	monitoring.Logf("pipeline: drift_detected=%t share=%.2f features=%v",
		report.DriftDetected, report.DriftShare, report.DriftedFeatures)

	r.finishArtifacts(report, refSample, curSample)

	if report.DriftDetected && r.Trigger != nil {
		r.transition(StageTriggeringRetrain)
		runID, err := r.Trigger.TriggerRetraining(ctx, report)
		if err != nil {
			r.transition(StageFailed)
			return report, &TriggerError{Report: report, Err: err}
		}
		monitoring.Logf("pipeline: retraining run %s queued", runID)
	}

	r.transition(StageDone)
	return report, nil
}

// finishArtifacts persists and renders the report. Failures here are
// reported distinctly from pipeline failures and never alter the report.
func (r *Runner) finishArtifacts(report *drift.Report, ref, cur drift.FeatureSample) {
	if r.Sink != nil {
		if err := r.Sink.SaveReport(report); err != nil {
			monitoring.Logf("pipeline: report persistence failed (report unaffected): %v", err)
		}
	}
	if r.Artifacts != nil {
		if err := r.Artifacts.WriteArtifacts(report, ref, cur); err != nil {
			monitoring.Logf("pipeline: artifact write failed (report unaffected): %v", err)
		}
	}
}

// listInput validates one image directory and returns its image paths.
func listInput(dir, role string) ([]string, error) {
	paths, err := drift.ListImages(dir)
	if err != nil {
		return nil, &drift.InputError{Dir: dir, Reason: role + " directory unreadable", Err: err}
	}
	if len(paths) == 0 {
		return nil, &drift.InputError{Dir: dir, Reason: role + " directory contains no images"}
	}
	return paths, nil
}

// IsInputError reports whether err is an input-validation failure.
func IsInputError(err error) bool {
	var ie *drift.InputError
	return errors.As(err, &ie)
}

// IsTriggerError reports whether err is a failed retraining trigger.
func IsTriggerError(err error) bool {
	var te *TriggerError
	return errors.As(err, &te)
}
