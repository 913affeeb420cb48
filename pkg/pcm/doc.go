// Package pcm queues 16-bit PCM audio for real-time playback and mixing.
//
// Format describes a stream (sample rate, channels, depth) and converts
// between byte counts, sample counts and durations. Chunk is a unit of audio
// that can be written to a Writer.
//
// Queue buffers one stream in a circlebuf.Buffer. Producers append chunks or
// place late audio at a time offset; the consumer pops fixed durations. A
// monitor goroutine can watch the buffered amount through Queue.Observer
// without locking:
//
//	q := pcm.NewQueue(pcm.L16Mono16K)
//	q.Write(pcm.L16Mono16K.DataChunk(samples))
//	q.PadSilence(40 * time.Millisecond)
//	chunk, err := q.ReadDuration(20 * time.Millisecond)
//
// Chunks in another format are resampled to the queue format on write.
package pcm
