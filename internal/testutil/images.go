// Package testutil provides shared image fixtures for drift pipeline tests.
package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// GradientImage returns a size x size grayscale gradient image whose pixel
// intensity is base + x + y, clipped to 255. The gradient gives every image
// non-zero internal variance (so std, contrast and sharpness features are
// meaningful) while base shifts its overall brightness.
func GradientImage(size int, base uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := int(base) + x + y
			if v > 255 {
				v = 255
			}
			c := uint8(v)
			img.SetRGBA(x, y, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}

// ScaledGradientImage is GradientImage with every intensity multiplied by
// factor (clipped), simulating a brightness drift on the same scene.
func ScaledGradientImage(size int, base uint8, factor float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := float64(int(base)+x+y) * factor
			if v > 255 {
				v = 255
			}
			c := uint8(v)
			img.SetRGBA(x, y, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}

// UniformImage returns a size x size image with every pixel set to the same
// gray level. Useful for zero-variance edge cases.
func UniformImage(size int, level uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: level, G: level, B: level, A: 255})
		}
	}
	return img
}

// WritePNG encodes img to path, failing the test on error.
func WritePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

// MakeImageDir writes n gradient images into a new subdirectory of base
// named name, with per-image brightness bases spread across the sample, and
// returns the directory path. factor scales every image's intensities
// (pass 1 for unmodified images).
func MakeImageDir(t *testing.T, base, name string, n int, factor float64) string {
	t.Helper()
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	for i := 0; i < n; i++ {
		img := ScaledGradientImage(24, uint8(30+i*2), factor)
		WritePNG(t, filepath.Join(dir, imageName(i)), img)
	}
	return dir
}

// WriteCorruptImage writes a file with a .png extension that no decoder
// accepts.
func WriteCorruptImage(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("writing corrupt image: %v", err)
	}
}

func imageName(i int) string {
	return "img_" + string(rune('a'+i/26)) + string(rune('a'+i%26)) + ".png"
}
