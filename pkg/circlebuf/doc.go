// Package circlebuf provides a growable, double-ended circular byte buffer
// for queueing streaming data such as audio samples or encoded frames.
//
// Bytes can be pushed and popped at either end, peeked without removal and
// overwritten in place at any logical offset with Place. The backing store
// doubles when it runs out of room; data that wraps around the physical end
// is relocated on growth so callers never deal with wraparound.
//
// A Buffer is single-writer and takes no locks. Its logical length is kept
// in an atomic counter; Observer returns a read-only handle that other
// goroutines may poll for occupancy:
//
//	var buf circlebuf.Buffer
//	obs := buf.Observer()
//	go monitor(obs) // only calls obs.Len()
//
//	buf.PushBack(samples)
//	frame := make([]byte, 960)
//	buf.PopFront(frame)
//
// Peek, Pop and Discard calls asking for more bytes than Len are
// programming errors and panic.
package circlebuf
