package pcm

import (
	"fmt"
	"io"
	"time"
)

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1
	L16Mono16K Format = iota
	// L16Mono24K represents audio/L16; rate=24000; channels=1
	L16Mono24K
	// L16Mono48K represents audio/L16; rate=48000; channels=1
	L16Mono48K
	// L16Stereo48K represents audio/L16; rate=48000; channels=2
	L16Stereo48K
)

// Chunk is a chunk of audio data.
type Chunk interface {
	Len() int64
	Format() Format
	WriteTo(w io.Writer) (int64, error)
}

// Format represents an audio format configuration.
type Format int

// ParseFormat returns the format with the given short name, e.g.
// "mono16k" or "stereo48k".
func ParseFormat(name string) (Format, error) {
	switch name {
	case "mono16k":
		return L16Mono16K, nil
	case "mono24k":
		return L16Mono24K, nil
	case "mono48k":
		return L16Mono48K, nil
	case "stereo48k":
		return L16Stereo48K, nil
	}
	return 0, fmt.Errorf("pcm: unknown format %q", name)
}

// SampleRate returns the sample rate in Hz for this format.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono24K:
		return 24000
	case L16Mono48K, L16Stereo48K:
		return 48000
	}
	panic("pcm: invalid audio type")
}

// Channels returns the number of audio channels for this format.
func (f Format) Channels() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 1
	case L16Stereo48K:
		return 2
	}
	panic("pcm: invalid audio type")
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K, L16Stereo48K:
		return 16
	}
	panic("pcm: invalid audio type")
}

// FrameSize returns the number of bytes holding one sample of every channel.
func (f Format) FrameSize() int {
	return f.Channels() * f.Depth() / 8
}

// Align rounds n bytes down to a whole number of frames.
func (f Format) Align(n int64) int64 {
	fs := int64(f.FrameSize())
	return n / fs * fs
}

// Samples returns the number of samples per channel in the given number of
// bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels()) / int64(f.Depth())
}

// SamplesInDuration returns the number of samples in the given duration.
func (f Format) SamplesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of bytes in the given duration.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return f.SamplesInDuration(d) * int64(f.FrameSize())
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate())
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.FrameSize()
}

// SilenceChunk returns a silence chunk of the given duration.
func (f Format) SilenceChunk(duration time.Duration) Chunk {
	return &SilenceChunk{
		Duration: duration,
		len:      f.BytesInDuration(duration),
		fmt:      f,
	}
}

// DataChunk returns a chunk of audio data.
func (f Format) DataChunk(data []byte) Chunk {
	return &DataChunk{
		Data: data,
		fmt:  f,
	}
}

// String returns a human-readable string representation of the format.
func (f Format) String() string {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K, L16Stereo48K:
		return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate(), f.Channels())
	}
	return fmt.Sprintf("pcm.Format(%d)", int(f))
}

// DataChunk is a chunk of audio data.
type DataChunk struct {
	Data []byte
	fmt  Format
}

// Len returns the length of the audio data in bytes.
func (c *DataChunk) Len() int64 {
	return int64(len(c.Data))
}

// Format returns the audio format of this chunk.
func (c *DataChunk) Format() Format {
	return c.fmt
}

// WriteTo writes the audio data to the writer.
func (c *DataChunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Data)
	return int64(n), err
}

// SilenceChunk is a chunk of silence.
type SilenceChunk struct {
	Duration time.Duration
	len      int64
	fmt      Format
}

// Len returns the length of the silence in bytes.
func (c *SilenceChunk) Len() int64 {
	return c.len
}

// Format returns the audio format of this chunk.
func (c *SilenceChunk) Format() Format {
	return c.fmt
}

var emptyBytes [32000]byte

// WriteTo writes silence (zero bytes) to the writer.
func (c *SilenceChunk) WriteTo(w io.Writer) (int64, error) {
	var wn int64
	for left := c.len; left > 0; {
		n := min(left, int64(len(emptyBytes)))
		wrote, err := w.Write(emptyBytes[:n])
		wn += int64(wrote)
		if err != nil {
			return wn, err
		}
		left -= n
	}
	return wn, nil
}
