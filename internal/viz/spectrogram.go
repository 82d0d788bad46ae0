// Package viz renders spectrogram PNGs for analyzed clips.
package viz

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/eligwz/spectrogram"

	"github.com/mirkit/stemscan/internal/audio"
)

// Default spectrogram dimensions.
const (
	DefaultWidth  = 2048
	DefaultHeight = 512
)

// RenderSpectrogram draws clip's spectrogram into a width x height PNG
// at path, creating parent directories as needed. The frequency bin
// count tracks the image height. Non-positive dimensions fall back to
// the defaults.
func RenderSpectrogram(clip *audio.Clip, path string, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if len(clip.Samples) == 0 {
		return fmt.Errorf("rendering %s: empty clip", path)
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))

	// Black background first, the drawer only paints detected energy.
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		clip.Samples,
		uint32(clip.SampleRate),
		uint32(height),
		false, // Hamming window, not rectangular
		false, // FFT, not DFT
		true,  // magnitude
		false, // linear scale, the library's log10 mode misrenders
	)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := spectrogram.SavePng(img, path); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}
