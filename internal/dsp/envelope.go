package dsp

import "math"

// Envelope is a frame-level signal descriptor: one value per analysis
// window, with windows advancing by HopSize samples.
type Envelope struct {
	Values     []float64
	WindowSize int
	HopSize    int
	SampleRate int
}

// NumFrames returns how many full windows fit over n samples. For
// n >= window the count is (n-window)/hop + 1, otherwise zero.
func NumFrames(n, window, hop int) int {
	if n < window || window <= 0 || hop <= 0 {
		return 0
	}
	return (n-window)/hop + 1
}

// TimeAt returns the start time of frame i in seconds.
func (e *Envelope) TimeAt(i int) float64 {
	return float64(i*e.HopSize) / float64(e.SampleRate)
}

// SecondsPerHop returns the time step between adjacent frames.
func (e *Envelope) SecondsPerHop() float64 {
	return float64(e.HopSize) / float64(e.SampleRate)
}

// EnergyEnvelope computes the mean squared amplitude per window.
func EnergyEnvelope(samples []float64, sampleRate, window, hop int) *Envelope {
	return &Envelope{
		Values:     frameEnergies(samples, window, hop, false),
		WindowSize: window,
		HopSize:    hop,
		SampleRate: sampleRate,
	}
}

// RMSEnvelope computes the root mean square amplitude per window.
func RMSEnvelope(samples []float64, sampleRate, window, hop int) *Envelope {
	return &Envelope{
		Values:     frameEnergies(samples, window, hop, true),
		WindowSize: window,
		HopSize:    hop,
		SampleRate: sampleRate,
	}
}

func frameEnergies(samples []float64, window, hop int, root bool) []float64 {
	frames := NumFrames(len(samples), window, hop)
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		start := i * hop
		sum := 0.0
		for j := start; j < start+window; j++ {
			sum += samples[j] * samples[j]
		}
		v := sum / float64(window)
		if root {
			v = math.Sqrt(v)
		}
		out[i] = v
	}
	return out
}

// RMS returns the root mean square amplitude of the whole signal.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
