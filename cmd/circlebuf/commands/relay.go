package commands

import (
	"errors"

	"github.com/haivivi/circlebuf/pkg/buffer"
)

var errRelayAborted = errors.New("relay aborted")

// newRelay returns the buffer between the pipe source and sink. A positive
// tail keeps only the last tail bytes and delivers them when the source
// ends; otherwise the source is throttled once limit bytes are queued.
func newRelay(capacity, tail, limit int) *buffer.Buffer {
	if tail > 0 {
		return buffer.Ring(tail)
	}
	return buffer.New(capacity, limit)
}
