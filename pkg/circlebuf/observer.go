package circlebuf

import "sync/atomic"

// Observer is a read-only view of a Buffer's length. It is safe to copy and
// to use from any goroutine while the owner keeps writing. A length read
// says nothing about the layout of the content.
type Observer struct {
	size *atomic.Int64
}

// Len returns the number of valid bytes at the time of the call. The zero
// Observer always reports 0.
func (o Observer) Len() int {
	if o.size == nil {
		return 0
	}
	return int(o.size.Load())
}
