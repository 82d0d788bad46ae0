package activity

import (
	"fmt"
	"math"

	"github.com/mirkit/stemscan/internal/audio"
	"github.com/mirkit/stemscan/internal/dsp"
)

// Labels assigned to segments.
const (
	LabelActive   = "active"
	LabelInactive = "inactive"
)

// Segment is a labeled span of the clip in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// Report is the activity analysis for one clip. Segments are ordered,
// non-overlapping, and cover [0, Duration] exactly.
type Report struct {
	Duration        float64   `json:"duration"`
	ActiveSeconds   float64   `json:"total_active_duration"`
	InactiveSeconds float64   `json:"total_silence_duration"`
	ActiveRatio     float64   `json:"active_ratio"`
	Segments        []Segment `json:"segments"`
}

// ActivePercentage returns the active share of the clip in percent.
func (r *Report) ActivePercentage() float64 {
	return r.ActiveRatio * 100
}

// Analyzer splits clips into active and inactive spans by thresholding
// a short-time RMS envelope. It is stateless and safe to reuse across
// files.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("activity config: %w", err)
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze classifies every span of the clip as active or inactive.
func (a *Analyzer) Analyze(clip *audio.Clip) (*Report, error) {
	if clip.Frames() == 0 {
		return nil, fmt.Errorf("%w: empty clip %s", audio.ErrShortSignal, clip.Path)
	}

	sr := clip.SampleRate
	window := int(a.cfg.WindowSeconds * float64(sr))
	if window < 1 {
		window = 1
	}
	hop := int(a.cfg.HopSeconds * float64(sr))
	if hop < 1 {
		hop = 1
	}

	duration := clip.Duration()
	env := dsp.RMSEnvelope(clip.Samples, sr, window, hop)

	// Clips shorter than one analysis window classify as a whole.
	if len(env.Values) == 0 {
		label := LabelInactive
		if dsp.RMS(clip.Samples) > 0 {
			label = LabelActive
		}
		return buildReport([]Segment{{Start: 0, End: duration, Label: label}}, duration), nil
	}

	labels := a.classifyFrames(env.Values)

	minFrames := int(math.Round(a.cfg.MinSegmentSeconds / env.SecondsPerHop()))
	if minFrames > 1 {
		labels = absorbShortRuns(labels, minFrames)
	}

	runs := findRuns(labels)
	segments := make([]Segment, len(runs))
	for i, r := range runs {
		seg := Segment{Label: LabelInactive}
		if r.active {
			seg.Label = LabelActive
		}
		if i == 0 {
			seg.Start = 0
		} else {
			seg.Start = segments[i-1].End
		}
		if i == len(runs)-1 {
			seg.End = duration
		} else {
			seg.End = env.TimeAt(r.end)
		}
		segments[i] = seg
	}

	return buildReport(segments, duration), nil
}

// classifyFrames marks a frame active when its RMS sits within
// ThresholdDB of the loudest frame. A clip of pure digital silence has
// no peak to measure against and classifies fully inactive.
func (a *Analyzer) classifyFrames(values []float64) []bool {
	labels := make([]bool, len(values))
	peak, _ := dsp.Max(values)
	if peak <= 0 {
		return labels
	}
	for i, v := range values {
		db := 20 * math.Log10(v/peak+1e-10)
		labels[i] = db >= a.cfg.ThresholdDB
	}
	return labels
}

type run struct {
	start, end int // frame range [start, end)
	active     bool
}

func (r run) length() int {
	return r.end - r.start
}

func findRuns(labels []bool) []run {
	var runs []run
	for i := 0; i < len(labels); {
		j := i
		for j < len(labels) && labels[j] == labels[i] {
			j++
		}
		runs = append(runs, run{start: i, end: j, active: labels[i]})
		i = j
	}
	return runs
}

// absorbShortRuns relabels runs shorter than minFrames to match their
// neighbors, shortest first, until every remaining run meets the
// minimum or only one run is left. Each flip merges the run into at
// least one neighbor, so the loop terminates.
func absorbShortRuns(labels []bool, minFrames int) []bool {
	out := append([]bool(nil), labels...)
	for {
		runs := findRuns(out)
		if len(runs) <= 1 {
			return out
		}
		shortest := -1
		for i, r := range runs {
			if r.length() >= minFrames {
				continue
			}
			if shortest == -1 || r.length() < runs[shortest].length() {
				shortest = i
			}
		}
		if shortest == -1 {
			return out
		}
		r := runs[shortest]
		for i := r.start; i < r.end; i++ {
			out[i] = !out[i]
		}
	}
}

func buildReport(segments []Segment, duration float64) *Report {
	r := &Report{Duration: duration, Segments: segments}
	for _, s := range segments {
		if s.Label == LabelActive {
			r.ActiveSeconds += s.End - s.Start
		} else {
			r.InactiveSeconds += s.End - s.Start
		}
	}
	if duration > 0 {
		r.ActiveRatio = r.ActiveSeconds / duration
	}
	return r
}
