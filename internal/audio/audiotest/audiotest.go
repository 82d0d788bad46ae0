// Package audiotest synthesizes small WAV files so analyzer tests do
// not depend on checked-in audio fixtures.
package audiotest

import (
	"math"
	"os"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Silence returns seconds of digital silence.
func Silence(seconds float64, sampleRate int) []float64 {
	return make([]float64, int(seconds*float64(sampleRate)))
}

// Sine returns a steady sine tone.
func Sine(freq, amp, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// ClickTrack returns seconds of audio with a short decaying 1.5 kHz
// burst on every beat of the given tempo, starting at time zero.
func ClickTrack(bpm, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	beatPeriod := 60.0 / bpm
	burstLen := int(0.01 * float64(sampleRate))
	for beat := 0.0; beat < seconds; beat += beatPeriod {
		start := int(beat * float64(sampleRate))
		for i := 0; i < burstLen && start+i < n; i++ {
			decay := math.Exp(-8.0 * float64(i) / float64(burstLen))
			out[start+i] = 0.9 * decay * math.Sin(2*math.Pi*1500.0*float64(i)/float64(sampleRate))
		}
	}
	return out
}

// Concat joins sample slices into one signal.
func Concat(parts ...[]float64) []float64 {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]float64, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// WriteWAV encodes samples as a PCM WAV file at the given path. Mono
// input is duplicated across channels when channels > 1.
func WriteWAV(t *testing.T, path string, samples []float64, sampleRate, bitDepth, channels int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)*channels),
		SourceBitDepth: bitDepth,
	}

	limit := float64(int(1)<<(uint(bitDepth)-1) - 1)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int(s * limit)
		for ch := 0; ch < channels; ch++ {
			buf.Data[i*channels+ch] = v
		}
	}

	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to finalize %s: %v", path, err)
	}
}
