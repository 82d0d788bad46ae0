package tempo

import "errors"

// Tunables
const (
	DefaultWindowSize   = 2048
	DefaultHopSize      = 512
	DefaultMinBPM       = 60.0
	DefaultMaxBPM       = 200.0
	DefaultChunkSeconds = 10.0
	DefaultCandidates   = 3

	// onset noise floor: multiple of the centered moving average, and
	// the half-span of that average in envelope frames
	DefaultFloorRatio = 1.5
	DefaultFloorSpan  = 8

	// octave preference: candidates near this tempo win ties against
	// their half/double partners
	DefaultPreferredBPM   = 120.0
	DefaultPreferredWidth = 40.0
)

// Config holds the estimator tunables. Zero values are invalid; start
// from DefaultConfig and override.
type Config struct {
	WindowSize     int
	HopSize        int
	MinBPM         float64
	MaxBPM         float64
	ChunkSeconds   float64
	Candidates     int
	FloorRatio     float64
	FloorSpan      int
	PreferredBPM   float64
	PreferredWidth float64
}

func DefaultConfig() Config {
	return Config{
		WindowSize:     DefaultWindowSize,
		HopSize:        DefaultHopSize,
		MinBPM:         DefaultMinBPM,
		MaxBPM:         DefaultMaxBPM,
		ChunkSeconds:   DefaultChunkSeconds,
		Candidates:     DefaultCandidates,
		FloorRatio:     DefaultFloorRatio,
		FloorSpan:      DefaultFloorSpan,
		PreferredBPM:   DefaultPreferredBPM,
		PreferredWidth: DefaultPreferredWidth,
	}
}

func (c Config) validate() error {
	if c.WindowSize <= 0 || c.HopSize <= 0 {
		return errors.New("window and hop sizes must be positive")
	}
	if c.HopSize > c.WindowSize {
		return errors.New("hop size must not exceed window size")
	}
	if c.MinBPM <= 0 || c.MaxBPM <= c.MinBPM {
		return errors.New("bpm range must be positive and ordered")
	}
	// Folding halves or doubles until a value lands in range, which
	// only terminates when the range spans a full octave.
	if c.MaxBPM < 2*c.MinBPM {
		return errors.New("bpm range must span at least one octave")
	}
	if c.ChunkSeconds <= 0 {
		return errors.New("chunk length must be positive")
	}
	if c.Candidates < 1 {
		return errors.New("candidate count must be at least 1")
	}
	if c.FloorRatio < 0 || c.FloorSpan < 0 {
		return errors.New("noise floor parameters must not be negative")
	}
	if c.PreferredBPM <= 0 || c.PreferredWidth <= 0 {
		return errors.New("preferred tempo and width must be positive")
	}
	return nil
}
