package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// IsSupported reports whether the file extension names a decodable format.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3":
		return true
	}
	return false
}

// DecodeFile reads an audio file from disk and returns it as a mono,
// normalized Clip. The decoder is chosen by extension: .wav and .mp3
// are supported, everything else fails with ErrInvalidFormat.
func DecodeFile(path string) (*Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(path)
	case ".mp3":
		return decodeMP3(path)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q",
			ErrInvalidFormat, filepath.Ext(path))
	}
}

func decodeWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrInvalidFormat, path)
	}
	if decoder.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: %s: only PCM WAV is supported, got format %d",
			ErrInvalidFormat, path, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("%w: %s: unsupported bit depth %d, want 16 or 24",
			ErrInvalidFormat, path, bitDepth)
	}

	channels := int(decoder.NumChans)
	sampleRate := int(decoder.SampleRate)
	if channels == 0 || sampleRate == 0 {
		return nil, fmt.Errorf("%w: %s: malformed fmt chunk (%d channels, %d Hz)",
			ErrInvalidFormat, path, channels, sampleRate)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading samples from %s: %v", ErrInvalidFormat, path, err)
	}

	return &Clip{
		Path:       path,
		Samples:    downmixToMono(buf.Data, channels, bitDepth),
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   channels,
	}, nil
}

// decodeMP3 decodes through go-mp3, which always yields 16-bit
// little-endian stereo frames (4 bytes per frame).
func decodeMP3(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidFormat, path, err)
	}

	const scale = 1.0 / 32768.0
	frames := len(raw) / 4
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = (float64(l) + float64(r)) * 0.5 * scale
	}

	return &Clip{
		Path:       path,
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		BitDepth:   16,
		Channels:   2,
	}, nil
}

// downmixToMono averages interleaved integer frames across channels and
// scales the result to [-1, 1] for the given bit depth.
func downmixToMono(data []int, channels, bitDepth int) []float64 {
	scale := 1.0 / float64(int(1)<<(uint(bitDepth)-1))
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(data[i*channels+ch])
		}
		out[i] = sum / float64(channels) * scale
	}
	return out
}
