package pcm

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Converter turns 16-bit PCM from one format into another. It handles sample
// rate conversion and mono/stereo conversion. A Converter keeps filter state
// between calls, so it must be fed one continuous stream.
type Converter struct {
	src, dst  Format
	resampler resampling.Resampler
}

// NewConverter returns a converter from src to dst.
func NewConverter(src, dst Format) (*Converter, error) {
	c := &Converter{src: src, dst: dst}
	if src.SampleRate() == dst.SampleRate() {
		return c, nil
	}
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(src.SampleRate()),
		OutputRate: float64(dst.SampleRate()),
		Channels:   dst.Channels(),
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("pcm: create resampler %v -> %v: %w", src, dst, err)
	}
	c.resampler = rs
	return c, nil
}

// Convert converts src-format bytes into dst-format bytes. Trailing bytes that
// do not form a whole frame are dropped. The resampler may hold back some
// output until later input arrives.
func (c *Converter) Convert(data []byte) ([]byte, error) {
	b := make([]byte, c.src.Align(int64(len(data))))
	copy(b, data)

	switch {
	case c.src.Channels() == 2 && c.dst.Channels() == 1:
		b = b[:stereoToMono(b)]
	case c.src.Channels() == 1 && c.dst.Channels() == 2:
		b = monoToStereo(b)
	}
	if c.resampler == nil {
		return b, nil
	}

	input := make([]float64, len(b)/2)
	for i := range input {
		input[i] = float64(int16(b[i*2])|int16(b[i*2+1])<<8) / 32768.0
	}
	output, err := c.resampler.Process(input)
	if err != nil {
		return nil, fmt.Errorf("pcm: resample: %w", err)
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		var v int16
		switch {
		case s > 1.0:
			v = 32767
		case s < -1.0:
			v = -32768
		default:
			v = int16(s * 32767.0)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out[:c.dst.Align(int64(len(out)))], nil
}

// stereoToMono averages L and R in place and returns the mono length.
func stereoToMono(b []byte) int {
	frames := len(b) / 4
	for i := range frames {
		j, k := i*4, i*2
		l := int16(b[j]) | int16(b[j+1])<<8
		r := int16(b[j+2]) | int16(b[j+3])<<8
		m := int16((int32(l) + int32(r)) / 2)
		b[k] = byte(m)
		b[k+1] = byte(m >> 8)
	}
	return frames * 2
}

// monoToStereo duplicates every sample into both channels.
func monoToStereo(b []byte) []byte {
	out := make([]byte, len(b)*2)
	for i := 0; i+1 < len(b); i += 2 {
		j := i * 2
		out[j], out[j+1] = b[i], b[i+1]
		out[j+2], out[j+3] = b[i], b[i+1]
	}
	return out
}
