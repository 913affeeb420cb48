// Package buffer provides a thread-safe byte pipe backed by a circlebuf.Buffer.
//
// A Buffer connects one producer and one consumer goroutine:
//
//   - New(capacity, limit) returns a streaming buffer. Write blocks while limit
//     or more bytes are queued, so a slow consumer throttles the producer.
//     A zero limit never blocks and the buffer grows as needed.
//
//   - Ring(size) returns a tail buffer. Write never blocks; once more than size
//     bytes are queued the oldest bytes are discarded.
//
// Buffers implement io.Reader, io.Writer and io.Closer. CloseWrite (or
// CloseWriteWithError) ends the stream but lets readers drain what is queued;
// CloseWithError stops both ends at once. Bytes left behind are still
// available through Pending.
//
// Example usage:
//
//	buf := buffer.New(4<<10, 64<<10)
//	go buf.Fill(src)
//	err := buf.Drain(dst, 4096)
package buffer
