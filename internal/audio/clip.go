package audio

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the decoders. Batch callers classify
// per-file failures with errors.Is.
var (
	// ErrInvalidFormat marks files that cannot be decoded: unknown
	// extension, broken RIFF structure, non-PCM codec, or an
	// unsupported bit depth.
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrShortSignal marks clips too short for the requested analysis.
	ErrShortSignal = errors.New("insufficient signal")
)

// MinAnalysisSeconds is the shortest clip the tempo estimator accepts.
const MinAnalysisSeconds = 2.0

// Clip is a decoded audio file: mono samples normalized to [-1, 1].
// A Clip is never mutated after DecodeFile returns it.
type Clip struct {
	Path       string
	Samples    []float64
	SampleRate int
	BitDepth   int
	Channels   int // channel count of the source file before downmix
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Frames returns the number of mono samples.
func (c *Clip) Frames() int {
	return len(c.Samples)
}

// CheckMinDuration returns ErrShortSignal when the clip holds less than
// the given number of seconds of audio.
func (c *Clip) CheckMinDuration(seconds float64) error {
	if c.Duration() < seconds {
		return fmt.Errorf("%w: %.2fs of audio, need at least %.2fs",
			ErrShortSignal, c.Duration(), seconds)
	}
	return nil
}
