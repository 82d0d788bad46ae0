package activity

import (
	"errors"
	"math"
	"testing"

	"github.com/mirkit/stemscan/internal/audio"
	"github.com/mirkit/stemscan/internal/audio/audiotest"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	return a
}

func clipFrom(samples []float64, sampleRate int) *audio.Clip {
	return &audio.Clip{
		Path:       "test.wav",
		Samples:    samples,
		SampleRate: sampleRate,
		BitDepth:   16,
		Channels:   1,
	}
}

func checkCoverage(t *testing.T, r *Report) {
	t.Helper()
	if len(r.Segments) == 0 {
		t.Fatal("Report has no segments")
	}
	if r.Segments[0].Start != 0 {
		t.Errorf("First segment starts at %f, want 0", r.Segments[0].Start)
	}
	last := r.Segments[len(r.Segments)-1]
	if math.Abs(last.End-r.Duration) > 1e-9 {
		t.Errorf("Last segment ends at %f, want duration %f", last.End, r.Duration)
	}
	for i, s := range r.Segments {
		if s.End <= s.Start {
			t.Errorf("Segment %d has non-positive span: %+v", i, s)
		}
		if i > 0 && s.Start != r.Segments[i-1].End {
			t.Errorf("Gap or overlap between segments %d and %d", i-1, i)
		}
		if i > 0 && s.Label == r.Segments[i-1].Label {
			t.Errorf("Segments %d and %d share label %q and should be coalesced", i-1, i, s.Label)
		}
	}
}

func TestAnalyzeSilence(t *testing.T) {
	a := newTestAnalyzer(t)

	got, err := a.Analyze(clipFrom(audiotest.Silence(3.0, 8000), 8000))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkCoverage(t, got)
	if len(got.Segments) != 1 {
		t.Fatalf("Expected a single segment, got %d", len(got.Segments))
	}
	if got.Segments[0].Label != LabelInactive {
		t.Errorf("Label = %q, want %q", got.Segments[0].Label, LabelInactive)
	}
	if got.ActiveRatio != 0 {
		t.Errorf("ActiveRatio = %f, want 0", got.ActiveRatio)
	}
}

func TestAnalyzeSteadyTone(t *testing.T) {
	a := newTestAnalyzer(t)

	got, err := a.Analyze(clipFrom(audiotest.Sine(440, 0.5, 3.0, 8000), 8000))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkCoverage(t, got)
	if len(got.Segments) != 1 || got.Segments[0].Label != LabelActive {
		t.Fatalf("Expected one active segment, got %+v", got.Segments)
	}
	if math.Abs(got.ActiveRatio-1.0) > 1e-9 {
		t.Errorf("ActiveRatio = %f, want 1.0", got.ActiveRatio)
	}
}

func TestAnalyzeBurstInSilence(t *testing.T) {
	a := newTestAnalyzer(t)
	samples := audiotest.Concat(
		audiotest.Silence(1.0, 8000),
		audiotest.Sine(440, 0.5, 2.0, 8000),
		audiotest.Silence(1.0, 8000),
	)

	got, err := a.Analyze(clipFrom(samples, 8000))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkCoverage(t, got)
	if len(got.Segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d: %+v", len(got.Segments), got.Segments)
	}
	wantLabels := []string{LabelInactive, LabelActive, LabelInactive}
	for i, s := range got.Segments {
		if s.Label != wantLabels[i] {
			t.Errorf("Segment %d label = %q, want %q", i, s.Label, wantLabels[i])
		}
	}

	if math.Abs(got.ActiveSeconds-2.0) > 0.1 {
		t.Errorf("ActiveSeconds = %f, want ~2.0", got.ActiveSeconds)
	}
	if math.Abs(got.ActiveRatio-0.5) > 0.05 {
		t.Errorf("ActiveRatio = %f, want ~0.5", got.ActiveRatio)
	}
	if math.Abs(got.ActivePercentage()-50) > 5 {
		t.Errorf("ActivePercentage = %f, want ~50", got.ActivePercentage())
	}
}

func TestAnalyzeShortGapAbsorbed(t *testing.T) {
	a := newTestAnalyzer(t)
	// A 0.2s gap is below the 0.5s minimum and merges into the
	// surrounding activity.
	samples := audiotest.Concat(
		audiotest.Sine(440, 0.5, 2.0, 8000),
		audiotest.Silence(0.2, 8000),
		audiotest.Sine(440, 0.5, 2.0, 8000),
	)

	got, err := a.Analyze(clipFrom(samples, 8000))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkCoverage(t, got)
	if len(got.Segments) != 1 {
		t.Fatalf("Expected the gap to be absorbed into one segment, got %+v", got.Segments)
	}
	if got.Segments[0].Label != LabelActive {
		t.Errorf("Label = %q, want %q", got.Segments[0].Label, LabelActive)
	}
}

func TestAnalyzeClipShorterThanWindow(t *testing.T) {
	a := newTestAnalyzer(t)

	// 100 samples at 8 kHz is 12.5ms, under the 25ms window.
	got, err := a.Analyze(clipFrom(audiotest.Sine(440, 0.5, 0.0125, 8000), 8000))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	checkCoverage(t, got)
	if len(got.Segments) != 1 || got.Segments[0].Label != LabelActive {
		t.Errorf("Expected one active segment for a tiny tone, got %+v", got.Segments)
	}

	got, err = a.Analyze(clipFrom(make([]float64, 100), 8000))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(got.Segments) != 1 || got.Segments[0].Label != LabelInactive {
		t.Errorf("Expected one inactive segment for tiny silence, got %+v", got.Segments)
	}
}

func TestAnalyzeEmptyClip(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.Analyze(clipFrom(nil, 8000))
	if err == nil {
		t.Fatal("Expected error for an empty clip")
	}
	if !errors.Is(err, audio.ErrShortSignal) {
		t.Errorf("Expected ErrShortSignal, got: %v", err)
	}
}

func TestNewAnalyzerValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Zero window", func(c *Config) { c.WindowSeconds = 0 }},
		{"Hop above window", func(c *Config) { c.HopSeconds = 1 }},
		{"Positive threshold", func(c *Config) { c.ThresholdDB = 3 }},
		{"Negative min segment", func(c *Config) { c.MinSegmentSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := NewAnalyzer(cfg); err == nil {
				t.Error("Expected config validation error")
			}
		})
	}
}

func TestAbsorbShortRuns(t *testing.T) {
	mk := func(spans ...struct {
		n int
		v bool
	}) []bool {
		var out []bool
		for _, s := range spans {
			for i := 0; i < s.n; i++ {
				out = append(out, s.v)
			}
		}
		return out
	}
	span := func(n int, v bool) struct {
		n int
		v bool
	} {
		return struct {
			n int
			v bool
		}{n, v}
	}

	labels := mk(span(10, true), span(3, false), span(10, true))
	out := absorbShortRuns(labels, 5)
	if got := findRuns(out); len(got) != 1 || !got[0].active {
		t.Errorf("Expected one active run after absorption, got %+v", got)
	}

	labels = mk(span(2, false), span(10, true))
	out = absorbShortRuns(labels, 5)
	if got := findRuns(out); len(got) != 1 || !got[0].active {
		t.Errorf("Expected leading gap absorbed, got %+v", got)
	}

	// A lone short run has no neighbor to join and stays as is.
	labels = mk(span(3, true))
	out = absorbShortRuns(labels, 5)
	if got := findRuns(out); len(got) != 1 || !got[0].active {
		t.Errorf("Expected single run unchanged, got %+v", got)
	}
}
