// Package driftsim manufactures drifted image batches from a clean source
// set so the monitoring pipeline has a current batch to evaluate in demo and
// test environments. All randomness (sampling, mixed-transform choice,
// noise) comes from one seeded generator, so a batch is reproducible from
// its metadata.
package driftsim

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
	"github.com/moseskim1027/visionops-defect-detection/internal/monitoring"
)

// DriftType selects the transform applied to the sampled images.
type DriftType string

const (
	DriftBrightness DriftType = "brightness"
	DriftNoise      DriftType = "noise"
	DriftBlur       DriftType = "blur"
	DriftMixed      DriftType = "mixed"
)

// ValidDriftType reports whether t names a supported transform.
func ValidDriftType(t DriftType) bool {
	switch t {
	case DriftBrightness, DriftNoise, DriftBlur, DriftMixed:
		return true
	}
	return false
}

// Options controls batch generation.
type Options struct {
	Type           DriftType
	Severity       float64 // drift intensity in [0, 1]
	SampleFraction float64 // fraction of source images to include
	Seed           int64
}

// Metadata describes a generated batch, written alongside it as
// metadata.json.
type Metadata struct {
	BatchID        string    `json:"batch_id"`
	Timestamp      string    `json:"timestamp"`
	DriftType      DriftType `json:"drift_type"`
	Severity       float64   `json:"severity"`
	SampleFraction float64   `json:"sample_fraction"`
	Seed           int64     `json:"seed"`
	NumImages      int       `json:"num_images"`
	SourceDir      string    `json:"source_dir"`
}

// ApplyBrightness multiplies every channel by factor, clipping to [0, 1].
// factor < 1 darkens, > 1 brightens.
func ApplyBrightness(img image.Image, factor float64) *image.RGBA {
	return mapPixels(img, func(v float64) float64 { return v * factor })
}

// ApplyNoise adds zero-mean gaussian noise with the given standard
// deviation (in normalised [0, 1] units), clipping to [0, 1].
func ApplyNoise(img image.Image, std float64, rng *rand.Rand) *image.RGBA {
	return mapPixels(img, func(v float64) float64 { return v + rng.NormFloat64()*std })
}

// ApplyBlur applies a box blur with the given radius (0 returns a copy).
func ApplyBlur(img image.Image, radius int) *image.RGBA {
	bounds := img.Bounds()
	src := toRGBA(img)
	if radius <= 0 {
		return src
	}

	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var rSum, gSum, bSum, n float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sy < 0 || sx >= w || sy >= h {
						continue
					}
					c := src.RGBAAt(sx, sy)
					rSum += float64(c.R)
					gSum += float64(c.G)
					bSum += float64(c.B)
					n++
				}
			}
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(rSum / n),
				G: uint8(gSum / n),
				B: uint8(bSum / n),
				A: 255,
			})
		}
	}
	return dst
}

// mapPixels applies f to every normalised channel value and clips.
func mapPixels(img image.Image, f func(float64) float64) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			dst.SetRGBA(x, y, color.RGBA{
				R: clip8(f(float64(r) / 65535.0)),
				G: clip8(f(float64(g) / 65535.0)),
				B: clip8(f(float64(b) / 65535.0)),
				A: 255,
			})
		}
	}
	return dst
}

func clip8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255.0))
}

func toRGBA(img image.Image) *image.RGBA {
	return mapPixels(img, func(v float64) float64 { return v })
}

// applyTransform dispatches to the transform for drift type t. The severity
// scalings mirror the platform's original drift simulator: brightness factor
// 1+severity, noise sigma severity*50/255, blur radius severity*5.
func applyTransform(img image.Image, t DriftType, severity float64, rng *rand.Rand) *image.RGBA {
	switch t {
	case DriftBrightness:
		return ApplyBrightness(img, 1.0+severity)
	case DriftNoise:
		return ApplyNoise(img, severity*50.0/255.0, rng)
	case DriftBlur:
		return ApplyBlur(img, int(math.Round(severity*5)))
	}

	// mixed: chain two distinct transforms at half strength
	transforms := []func(image.Image) *image.RGBA{
		func(i image.Image) *image.RGBA { return ApplyBrightness(i, 1.0+severity*0.5) },
		func(i image.Image) *image.RGBA { return ApplyNoise(i, severity*25.0/255.0, rng) },
		func(i image.Image) *image.RGBA { return ApplyBlur(i, int(math.Round(severity*2))) },
	}
	idx := rng.Perm(len(transforms))
	return transforms[idx[1]](transforms[idx[0]](img))
}

// SimulateBatch samples a fraction of the images under srcDir, applies the
// configured drift transform, and writes the result to a new batch directory
// under dstDir along with its metadata.json. It returns the batch directory
// path.
func SimulateBatch(srcDir, dstDir string, opts Options) (string, error) {
	if !ValidDriftType(opts.Type) {
		return "", fmt.Errorf("unknown drift type %q", opts.Type)
	}
	if opts.SampleFraction <= 0 || opts.SampleFraction > 1 {
		return "", fmt.Errorf("sample_fraction must be in (0, 1], got %g", opts.SampleFraction)
	}

	paths, err := drift.ListImages(srcDir)
	if err != nil {
		return "", fmt.Errorf("listing source images: %w", err)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no images in %s", srcDir)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	sampleSize := int(float64(len(paths)) * opts.SampleFraction)
	if sampleSize < 1 {
		sampleSize = 1
	}
	perm := rng.Perm(len(paths))[:sampleSize]

	timestamp := time.Now().UTC().Format("20060102T150405Z")
	batchDir := filepath.Join(dstDir, fmt.Sprintf("batch_%s_%s", opts.Type, timestamp))
	imgDir := filepath.Join(batchDir, "images")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return "", fmt.Errorf("creating batch directory: %w", err)
	}

	written := 0
	for _, i := range perm {
		src := paths[i]
		img, err := decodeFile(src)
		if err != nil {
			monitoring.Logf("driftsim: skipping %s: %v", src, err)
			continue
		}
		out := applyTransform(img, opts.Type, opts.Severity, rng)
		if err := encodeFile(filepath.Join(imgDir, filepath.Base(src)), out); err != nil {
			return "", fmt.Errorf("writing drifted image: %w", err)
		}
		written++
	}

	meta := Metadata{
		BatchID:        uuid.New().String(),
		Timestamp:      timestamp,
		DriftType:      opts.Type,
		Severity:       opts.Severity,
		SampleFraction: opts.SampleFraction,
		Seed:           opts.Seed,
		NumImages:      written,
		SourceDir:      srcDir,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(batchDir, "metadata.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	monitoring.Logf("driftsim: batch %s created (%d images, type=%s, severity=%.2f)",
		batchDir, written, opts.Type, opts.Severity)
	return batchDir, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func encodeFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(f, img)
	default:
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
}
