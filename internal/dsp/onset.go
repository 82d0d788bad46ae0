package dsp

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// OnsetStrength computes a spectral-flux onset envelope: each frame is
// Hann-windowed, zero-padded to a power of two, transformed, and the
// positive bin-wise magnitude changes against the previous frame are
// summed. Sudden broadband energy, like a drum hit, shows up as a
// spike; steady tones contribute nothing.
func OnsetStrength(samples []float64, sampleRate, windowSize, hopSize int) *Envelope {
	frames := NumFrames(len(samples), windowSize, hopSize)
	env := &Envelope{
		Values:     make([]float64, frames),
		WindowSize: windowSize,
		HopSize:    hopSize,
		SampleRate: sampleRate,
	}
	if frames == 0 {
		return env
	}

	fftSize := nextPow2(windowSize)
	win := window.Hann(windowSize)
	frame := make([]float64, fftSize)
	mag := make([]float64, fftSize/2+1)
	prevMag := make([]float64, fftSize/2+1)

	for i := 0; i < frames; i++ {
		start := i * hopSize
		for k := range frame {
			frame[k] = 0
		}
		for j := 0; j < windowSize; j++ {
			frame[j] = samples[start+j] * win[j]
		}

		spec := fft.FFTReal(frame)
		for j := 0; j <= fftSize/2; j++ {
			mag[j] = cmplx.Abs(spec[j])
		}

		flux := 0.0
		for j := range mag {
			if d := mag[j] - prevMag[j]; d > 0 {
				flux += d
			}
		}
		env.Values[i] = flux
		copy(prevMag, mag)
	}

	// The first frame has no predecessor, so its flux is the full frame
	// magnitude. Zero it to keep silence-leading clips flat.
	env.Values[0] = 0
	return env
}

// SuppressNoiseFloor zeroes values below ratio times the centered
// moving average over 2*span+1 frames, leaving onset-like activity.
func SuppressNoiseFloor(values []float64, ratio float64, span int) []float64 {
	baseline := MovingAverage(values, span)
	out := make([]float64, len(values))
	for i, v := range values {
		if v >= ratio*baseline[i] {
			out[i] = v
		}
	}
	return out
}

// PickPeaks returns indices of local maxima that rise above ratio
// times the centered moving average over 2*span+1 frames.
func PickPeaks(values []float64, ratio float64, span int) []int {
	if len(values) == 0 {
		return nil
	}
	baseline := MovingAverage(values, span)
	var peaks []int
	for i, v := range values {
		if v <= 0 || v < ratio*baseline[i] {
			continue
		}
		if i > 0 && v < values[i-1] {
			continue
		}
		if i < len(values)-1 && v <= values[i+1] {
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}

// MovingAverage returns the centered moving average over 2*span+1
// values, shrinking the window at the edges.
func MovingAverage(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := i - span
		if lo < 0 {
			lo = 0
		}
		hi := i + span
		if hi >= len(values) {
			hi = len(values) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func nextPow2(n int) int {
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}
