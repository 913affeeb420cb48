package pcm

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		f         Format
		rate, ch  int
		frame     int
		bytesRate int
		bytesIn1s int64
	}{
		{L16Mono16K, 16000, 1, 2, 32000, 32000},
		{L16Mono24K, 24000, 1, 2, 48000, 48000},
		{L16Mono48K, 48000, 1, 2, 96000, 96000},
		{L16Stereo48K, 48000, 2, 4, 192000, 192000},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := tt.f.SampleRate(); got != tt.rate {
				t.Errorf("SampleRate()=%d", got)
			}
			if got := tt.f.Channels(); got != tt.ch {
				t.Errorf("Channels()=%d", got)
			}
			if got := tt.f.FrameSize(); got != tt.frame {
				t.Errorf("FrameSize()=%d", got)
			}
			if got := tt.f.BytesRate(); got != tt.bytesRate {
				t.Errorf("BytesRate()=%d", got)
			}
			if got := tt.f.BytesInDuration(time.Second); got != tt.bytesIn1s {
				t.Errorf("BytesInDuration(1s)=%d", got)
			}
			if got := tt.f.Duration(tt.bytesIn1s); got != time.Second {
				t.Errorf("Duration(%d)=%v", tt.bytesIn1s, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("stereo48k")
	if err != nil || f != L16Stereo48K {
		t.Errorf("ParseFormat(stereo48k)=%v,%v", f, err)
	}
	if _, err := ParseFormat("mono8k"); err == nil {
		t.Error("ParseFormat(mono8k) succeeded")
	}
}

func TestSilenceChunk(t *testing.T) {
	c := L16Mono16K.SilenceChunk(2 * time.Second)
	if c.Len() != 64000 {
		t.Fatalf("Len()=%d", c.Len())
	}
	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	if err != nil || n != 64000 {
		t.Fatalf("WriteTo=%d,%v", n, err)
	}
	if bytes.Count(buf.Bytes(), []byte{0}) != 64000 {
		t.Error("silence is not all zeros")
	}
}

func TestCopy(t *testing.T) {
	src := make([]byte, 1001)
	for i := range src {
		src[i] = byte(i)
	}
	var got []byte
	var chunks int
	w := WriteFunc(func(c Chunk) error {
		chunks++
		if c.Len()%2 != 0 {
			t.Errorf("unaligned chunk of %d bytes", c.Len())
		}
		got = append(got, c.(*DataChunk).Data...)
		return nil
	})
	if err := Copy(w, bytes.NewReader(src), L16Mono16K); err != nil {
		t.Fatalf("Copy error: %v", err)
	}
	if !bytes.Equal(got, src[:1000]) {
		t.Errorf("copied %d bytes, want the first 1000", len(got))
	}
	if chunks == 0 {
		t.Error("no chunks written")
	}
}

func TestCopy_WriterError(t *testing.T) {
	want := errors.New("sink full")
	w := WriteFunc(func(Chunk) error { return want })
	err := Copy(w, bytes.NewReader(make([]byte, 640)), L16Mono16K)
	if !errors.Is(err, want) {
		t.Errorf("Copy error=%v", err)
	}
}

func TestIOWriter(t *testing.T) {
	var buf bytes.Buffer
	w := IOWriter(ChunkWriter(&buf), L16Mono16K)
	if _, err := io.WriteString(w, "abcd"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "abcd" {
		t.Errorf("got=%q", buf.String())
	}
	if err := Discard.Write(L16Mono16K.DataChunk([]byte("x"))); err != nil {
		t.Errorf("Discard error: %v", err)
	}
}
