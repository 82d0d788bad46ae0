package dsp

import (
	"math"
	"testing"

	"github.com/mirkit/stemscan/internal/audio/audiotest"
)

func TestOnsetStrengthClickTrack(t *testing.T) {
	// Four clicks over two seconds at 120 BPM.
	samples := audiotest.ClickTrack(120, 2.0, 8000)

	env := OnsetStrength(samples, 8000, 256, 64)

	wantFrames := NumFrames(len(samples), 256, 64)
	if len(env.Values) != wantFrames {
		t.Fatalf("Got %d frames, want %d", len(env.Values), wantFrames)
	}

	peak, _ := Max(env.Values)
	if peak <= 0 {
		t.Fatal("Expected positive onset strength at clicks")
	}
	if mean := Mean(env.Values); peak < 5*mean {
		t.Errorf("Click peak %f not prominent against mean %f", peak, mean)
	}

	peaks := PickPeaks(env.Values, 1.5, 8)
	if len(peaks) < 3 || len(peaks) > 8 {
		t.Errorf("Expected roughly one peak per click (3-8), got %d at %v", len(peaks), peaks)
	}
}

func TestOnsetStrengthSteadyTone(t *testing.T) {
	// A steady tone has no spectral change, so flux stays near zero
	// after the attack.
	samples := audiotest.Sine(440, 0.8, 1.0, 8000)

	env := OnsetStrength(samples, 8000, 256, 64)

	for i := 8; i < len(env.Values); i++ {
		if env.Values[i] > 2.0 {
			t.Errorf("Frame %d flux = %f, expected near-zero for steady tone", i, env.Values[i])
		}
	}
}

func TestOnsetStrengthShortInput(t *testing.T) {
	env := OnsetStrength(make([]float64, 100), 8000, 256, 64)
	if len(env.Values) != 0 {
		t.Errorf("Expected empty envelope for input shorter than a window, got %d frames", len(env.Values))
	}
}

func TestSuppressNoiseFloor(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 0.1
	}
	values[5] = 1.0
	values[15] = 1.0

	out := SuppressNoiseFloor(values, 1.5, 2)

	if out[5] != 1.0 || out[15] != 1.0 {
		t.Errorf("Spikes should survive suppression, got %f and %f", out[5], out[15])
	}
	if out[0] != 0 || out[10] != 0 {
		t.Errorf("Noise floor should be zeroed, got %f and %f", out[0], out[10])
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 1, 1, 4, 1, 1, 1}

	out := MovingAverage(values, 1)

	if math.Abs(out[3]-2.0) > 1e-12 {
		t.Errorf("Center average = %f, want 2.0", out[3])
	}
	if math.Abs(out[0]-1.0) > 1e-12 {
		t.Errorf("Edge average = %f, want 1.0 over the shrunken window", out[0])
	}
}

func TestPickPeaks(t *testing.T) {
	values := []float64{0, 1, 3, 1, 0, 2, 5, 2, 0}

	peaks := PickPeaks(values, 1.0, 2)

	if len(peaks) != 2 || peaks[0] != 2 || peaks[1] != 6 {
		t.Errorf("PickPeaks = %v, want [2 6]", peaks)
	}
}

func TestNextPow2(t *testing.T) {
	tests := map[int]int{1: 1, 2: 2, 3: 4, 1000: 1024, 1024: 1024, 1025: 2048}
	for n, want := range tests {
		if got := nextPow2(n); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", n, got, want)
		}
	}
}
