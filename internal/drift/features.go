// Package drift implements the drift-triggered retraining decision pipeline:
// per-image feature extraction, two-sample distribution comparison,
// share-threshold aggregation, and report assembly.
//
// The feature formulas are fixed and applied identically to the reference
// and current image sets; changing a formula between the two sides would
// invalidate the comparison.
package drift

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	// Registered decoders for the image formats the platform produces.
	_ "image/jpeg"
	_ "image/png"

	"github.com/moseskim1027/visionops-defect-detection/internal/monitoring"
)

// FeatureVector maps a feature name to its scalar value for one image.
// Vectors are computed independently per image and never mutated.
type FeatureVector map[string]float64

// FeatureSample is the set of feature vectors for one image collection
// (reference or current). Order carries no meaning; the sample is treated
// as an unordered statistical sample.
type FeatureSample []FeatureVector

// Column returns the values of one feature across all vectors in the sample.
// Vectors missing the feature are skipped.
func (s FeatureSample) Column(name string) []float64 {
	out := make([]float64, 0, len(s))
	for _, fv := range s {
		if v, ok := fv[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Builtin feature names. All are computed from the RGB pixel array
// normalised to [0, 1]:
//
//	brightness_mean  mean of all normalised R, G and B samples
//	brightness_std   population standard deviation of the same samples
//	contrast         population standard deviation of the grayscale image
//	                 (grayscale = per-pixel mean of R, G, B)
//	sharpness        mean gradient energy of the grayscale image
//	                 (central differences, gx²+gy² averaged over all pixels)
const (
	FeatureBrightnessMean = "brightness_mean"
	FeatureBrightnessStd  = "brightness_std"
	FeatureContrast       = "contrast"
	FeatureSharpness      = "sharpness"
)

// DefaultFeatures is the canonical evaluation order used when the
// configuration does not name an explicit feature list.
func DefaultFeatures() []string {
	return []string{
		FeatureBrightnessMean,
		FeatureBrightnessStd,
		FeatureContrast,
		FeatureSharpness,
	}
}

// KnownFeature reports whether name is a feature this package can compute.
func KnownFeature(name string) bool {
	switch name {
	case FeatureBrightnessMean, FeatureBrightnessStd, FeatureContrast, FeatureSharpness:
		return true
	}
	return false
}

// ComputeFeatures computes all builtin features for one decoded image.
func ComputeFeatures(img image.Image) FeatureVector {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return FeatureVector{
			FeatureBrightnessMean: 0,
			FeatureBrightnessStd:  0,
			FeatureContrast:       0,
			FeatureSharpness:      0,
		}
	}

	gray := make([]float64, w*h)

	// Single pass accumulating channel statistics while building the
	// grayscale plane used for contrast and sharpness.
	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rf := float64(r) / 65535.0
			gf := float64(g) / 65535.0
			bf := float64(b) / 65535.0
			sum += rf + gf + bf
			sumSq += rf*rf + gf*gf + bf*bf
			gray[y*w+x] = (rf + gf + bf) / 3.0
		}
	}

	n := float64(w * h * 3)
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	return FeatureVector{
		FeatureBrightnessMean: mean,
		FeatureBrightnessStd:  math.Sqrt(variance),
		FeatureContrast:       grayStd(gray),
		FeatureSharpness:      gradientEnergy(gray, w, h),
	}
}

// grayStd returns the population standard deviation of the grayscale plane.
func grayStd(gray []float64) float64 {
	var sum, sumSq float64
	for _, v := range gray {
		sum += v
		sumSq += v * v
	}
	n := float64(len(gray))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// gradientEnergy returns the mean of gx²+gy² over the grayscale plane using
// central differences in the interior and one-sided differences at borders.
func gradientEnergy(gray []float64, w, h int) float64 {
	at := func(x, y int) float64 { return gray[y*w+x] }

	var total float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			switch {
			case w == 1:
				gx = 0
			case x == 0:
				gx = at(1, y) - at(0, y)
			case x == w-1:
				gx = at(w-1, y) - at(w-2, y)
			default:
				gx = (at(x+1, y) - at(x-1, y)) / 2.0
			}
			switch {
			case h == 1:
				gy = 0
			case y == 0:
				gy = at(x, 1) - at(x, 0)
			case y == h-1:
				gy = at(x, h-1) - at(x, h-2)
			default:
				gy = (at(x, y+1) - at(x, y-1)) / 2.0
			}
			total += gx*gx + gy*gy
		}
	}
	return total / float64(w*h)
}

// ExtractFeatures decodes each image and computes its feature vector.
// Unreadable or undecodable images are logged and skipped; the returned
// sample may therefore be shorter than the input list. The returned count
// reports how many images were skipped.
func ExtractFeatures(paths []string) (FeatureSample, int) {
	sample := make(FeatureSample, 0, len(paths))
	skipped := 0
	for _, p := range paths {
		img, err := decodeImage(p)
		if err != nil {
			monitoring.Logf("drift: skipping image %s: %v", p, err)
			skipped++
			continue
		}
		sample = append(sample, ComputeFeatures(img))
	}
	return sample, skipped
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// ListImages returns the sorted JPEG/PNG paths directly under dir.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
