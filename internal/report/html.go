// Package report renders human-readable artifacts from a finished drift
// report: an HTML summary with a per-feature chart and optional histogram
// plots of the raw feature distributions. Rendering only reads the report;
// the decision values are never recomputed or altered here.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
)

// ArtifactError reports a failed artifact write. The drift report itself is
// unaffected; only the optional file is missing.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("writing artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// RenderHTML writes a self-contained HTML summary of the report to w: a
// verdict header followed by a bar chart of each feature's KS statistic,
// with drifted features called out.
func RenderHTML(r *drift.Report, w io.Writer) error {
	verdict := "no drift detected"
	if r.DriftDetected {
		verdict = "DRIFT DETECTED"
	}
	if r.Skipped {
		verdict = "skipped (insufficient samples)"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Drift Report",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Drift report: %s", verdict),
			Subtitle: fmt.Sprintf("run=%s share=%.2f ref=%d cur=%d generated=%s",
				r.RunID, r.DriftShare, r.ReferenceCount, r.CurrentCount,
				r.GeneratedAt.Format("2006-01-02T15:04:05Z")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "KS statistic"}),
	)

	features := orderedFeatures(r)
	bars := make([]opts.BarData, 0, len(features))
	pvals := make([]opts.BarData, 0, len(features))
	for _, name := range features {
		res := r.PerFeature[name]
		label := name
		if res.Drifted {
			label = name + " (drifted)"
		} else if res.Status == drift.StatusInsufficientData {
			label = name + " (insufficient data)"
		}
		bars = append(bars, opts.BarData{Name: label, Value: res.Statistic})
		pvals = append(pvals, opts.BarData{Name: label, Value: res.PValue})
	}

	bar.SetXAxis(features)
	bar.AddSeries("KS statistic", bars)
	bar.AddSeries("p-value", pvals)

	return bar.Render(w)
}

// WriteHTML renders the HTML summary to path. Failures are wrapped in
// ArtifactError so callers can report them distinctly from run failures.
func WriteHTML(r *drift.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	defer f.Close()

	if err := RenderHTML(r, f); err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	return nil
}

// orderedFeatures returns the report's feature names in a stable order:
// drifted features first (in their stored order), then the rest by name.
func orderedFeatures(r *drift.Report) []string {
	seen := make(map[string]bool, len(r.PerFeature))
	out := make([]string, 0, len(r.PerFeature))
	for _, name := range r.DriftedFeatures {
		if _, ok := r.PerFeature[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(r.PerFeature))
	for name := range r.PerFeature {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
