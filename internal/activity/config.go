package activity

import "errors"

// Tunables
const (
	DefaultWindowSeconds     = 0.025
	DefaultHopSeconds        = 0.010
	DefaultThresholdDB       = -40.0
	DefaultMinSegmentSeconds = 0.5
)

// Config holds the segmentation tunables. ThresholdDB is measured
// relative to the loudest analysis frame of the clip, so quiet but
// clean recordings classify the same way as loud ones.
type Config struct {
	WindowSeconds     float64
	HopSeconds        float64
	ThresholdDB       float64
	MinSegmentSeconds float64
}

func DefaultConfig() Config {
	return Config{
		WindowSeconds:     DefaultWindowSeconds,
		HopSeconds:        DefaultHopSeconds,
		ThresholdDB:       DefaultThresholdDB,
		MinSegmentSeconds: DefaultMinSegmentSeconds,
	}
}

func (c Config) validate() error {
	if c.WindowSeconds <= 0 || c.HopSeconds <= 0 {
		return errors.New("window and hop must be positive")
	}
	if c.HopSeconds > c.WindowSeconds {
		return errors.New("hop must not exceed window")
	}
	if c.ThresholdDB >= 0 {
		return errors.New("threshold must be negative dB relative to peak")
	}
	if c.MinSegmentSeconds < 0 {
		return errors.New("minimum segment length must not be negative")
	}
	return nil
}
