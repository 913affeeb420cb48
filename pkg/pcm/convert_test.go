package pcm

import (
	"bytes"
	"testing"
)

func TestConverter_Channels(t *testing.T) {
	t.Run("stereo to mono", func(t *testing.T) {
		c, err := NewConverter(L16Stereo48K, L16Mono48K)
		if err != nil {
			t.Fatal(err)
		}
		// L=100, R=200 then L=-4, R=-2.
		in := []byte{100, 0, 200, 0, 0xfc, 0xff, 0xfe, 0xff}
		got, err := c.Convert(in)
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{150, 0, 0xfd, 0xff}
		if !bytes.Equal(got, want) {
			t.Errorf("got=%v, want %v", got, want)
		}
		if in[0] != 100 {
			t.Error("input modified")
		}
	})

	t.Run("mono to stereo", func(t *testing.T) {
		c, err := NewConverter(L16Mono48K, L16Stereo48K)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := c.Convert([]byte{1, 2, 3, 4, 5})
		want := []byte{1, 2, 1, 2, 3, 4, 3, 4}
		if !bytes.Equal(got, want) {
			t.Errorf("got=%v, want %v", got, want)
		}
	})

	t.Run("same format", func(t *testing.T) {
		c, _ := NewConverter(L16Mono16K, L16Mono16K)
		got, _ := c.Convert([]byte{1, 2, 3, 4})
		if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
			t.Errorf("got=%v", got)
		}
	})
}

func TestConverter_Resample(t *testing.T) {
	c, err := NewConverter(L16Mono16K, L16Mono48K)
	if err != nil {
		t.Fatal(err)
	}
	var total int
	for range 10 {
		out, err := c.Convert(make([]byte, 3200))
		if err != nil {
			t.Fatal(err)
		}
		if len(out)%2 != 0 {
			t.Errorf("unaligned output of %d bytes", len(out))
		}
		total += len(out)
	}
	// 100ms of 16k input should become roughly 100ms of 48k output once the
	// filter has primed.
	if total > 3*32000 {
		t.Errorf("resampled to %d bytes, more than 3x the input", total)
	}
}
