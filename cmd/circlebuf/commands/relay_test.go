package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRelay(t *testing.T) {
	t.Run("tail", func(t *testing.T) {
		r := newRelay(1024, 4, 0)
		go r.Fill(strings.NewReader("abcdefgh"))
		var dst bytes.Buffer
		if err := r.Drain(&dst, 2); err != nil {
			t.Fatal(err)
		}
		if dst.String() != "efgh" {
			t.Errorf("got=%q", dst.String())
		}
	})

	t.Run("stream", func(t *testing.T) {
		r := newRelay(0, 0, 2)
		go r.Fill(strings.NewReader("abcdefgh"))
		var dst bytes.Buffer
		if err := r.Drain(&dst, 3); err != nil {
			t.Fatal(err)
		}
		if dst.String() != "abcdefgh" || r.Written() != 8 {
			t.Errorf("got=%q written=%d", dst.String(), r.Written())
		}
	})
}
