package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
	"github.com/moseskim1027/visionops-defect-detection/internal/monitoring"
)

const histogramBins = 16

// WriteHistograms writes one PNG per feature overlaying the reference and
// current value distributions, into dir (created if missing). Features with
// no extractable column are skipped with a logged warning. The first write
// failure aborts with an ArtifactError; plots already written stay on disk.
func WriteHistograms(ref, cur drift.FeatureSample, features []string, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ArtifactError{Path: dir, Err: err}
	}

	for _, name := range features {
		refCol := ref.Column(name)
		curCol := cur.Column(name)
		if len(refCol) == 0 || len(curCol) == 0 {
			monitoring.Logf("report: no values for feature %s, skipping histogram", name)
			continue
		}

		path := filepath.Join(dir, name+".png")
		if err := writeHistogram(name, refCol, curCol, path); err != nil {
			return err
		}
	}
	return nil
}

func writeHistogram(name string, refCol, curCol []float64, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: reference vs current", name)
	p.X.Label.Text = name
	p.Y.Label.Text = "count"

	refHist, err := plotter.NewHist(plotter.Values(refCol), histogramBins)
	if err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	refHist.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 160}
	p.Add(refHist)
	p.Legend.Add("reference", refHist)

	curHist, err := plotter.NewHist(plotter.Values(curCol), histogramBins)
	if err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	curHist.FillColor = color.RGBA{R: 220, G: 100, B: 60, A: 160}
	p.Add(curHist)
	p.Legend.Add("current", curHist)

	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	return nil
}

// Writer bundles the optional artifacts for one run so the pipeline can
// treat them as a single adapter.
type Writer struct {
	// HTMLPath receives the summary page; empty disables it.
	HTMLPath string
	// HistogramDir receives per-feature distribution PNGs; empty disables.
	HistogramDir string
	// Features limits which histograms are drawn.
	Features []string
}

// WriteArtifacts renders everything the Writer is configured for. All
// configured artifacts are attempted even after a failure; the first error
// is returned.
func (w *Writer) WriteArtifacts(r *drift.Report, ref, cur drift.FeatureSample) error {
	var firstErr error
	if w.HTMLPath != "" {
		if err := WriteHTML(r, w.HTMLPath); err != nil {
			monitoring.Logf("report: %v", err)
			firstErr = err
		}
	}
	if w.HistogramDir != "" {
		if err := WriteHistograms(ref, cur, w.Features, w.HistogramDir); err != nil {
			monitoring.Logf("report: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
