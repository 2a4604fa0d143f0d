package session

import (
	"errors"
	"sync"
)

// ErrBufferFull is returned when the buffer exceeds its maximum size
var ErrBufferFull = errors.New("audio buffer full")

// AudioBatch is the result of flushing an AudioBuffer: the concatenated PCM
// data tagged with its sample rate, ready to hand to the proxy as one turn.
type AudioBatch struct {
	Data       []byte
	SampleRate int
	ChunkCount int
}

// IsEmpty reports whether the batch carries no audio.
func (b AudioBatch) IsEmpty() bool {
	return len(b.Data) == 0
}

// AudioBuffer accumulates PCM chunks at a fixed sample rate until flushed.
// Clients stream small chunks continuously; the buffered total is forwarded
// as one batch when the client ends its turn.
type AudioBuffer struct {
	chunks     [][]byte
	totalSize  int
	maxSize    int
	sampleRate int
	mu         sync.Mutex
}

// NewAudioBuffer creates a buffer for PCM audio at the given sample rate with
// the specified maximum size in bytes
func NewAudioBuffer(maxSize, sampleRate int) *AudioBuffer {
	return &AudioBuffer{
		chunks:     make([][]byte, 0),
		maxSize:    maxSize,
		sampleRate: sampleRate,
	}
}

// MaxSize returns the maximum buffer size
func (ab *AudioBuffer) MaxSize() int {
	return ab.maxSize
}

// SampleRate returns the PCM sample rate the buffer was created for
func (ab *AudioBuffer) SampleRate() int {
	return ab.sampleRate
}

// Append adds an audio chunk to the buffer
// Returns ErrBufferFull if adding the chunk would exceed maxSize
func (ab *AudioBuffer) Append(chunk []byte) error {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	newSize := ab.totalSize + len(chunk)
	if newSize > ab.maxSize {
		return ErrBufferFull
	}

	ab.chunks = append(ab.chunks, chunk)
	ab.totalSize = newSize
	return nil
}

// Flush concatenates all chunks in order, clears the buffer and returns the
// batch tagged with the buffer's sample rate. An empty buffer yields an
// empty batch.
func (ab *AudioBuffer) Flush() AudioBatch {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	batch := AudioBatch{
		SampleRate: ab.sampleRate,
		ChunkCount: len(ab.chunks),
	}
	if len(ab.chunks) == 0 {
		return batch
	}

	data := make([]byte, 0, ab.totalSize)
	for _, chunk := range ab.chunks {
		data = append(data, chunk...)
	}
	batch.Data = data

	ab.chunks = make([][]byte, 0)
	ab.totalSize = 0

	return batch
}

// Clear empties the buffer without returning data
func (ab *AudioBuffer) Clear() {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	ab.chunks = make([][]byte, 0)
	ab.totalSize = 0
}

// Size returns the current total buffered bytes
func (ab *AudioBuffer) Size() int {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	return ab.totalSize
}

// IsEmpty returns true if no chunks are buffered
func (ab *AudioBuffer) IsEmpty() bool {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	return len(ab.chunks) == 0
}

// ChunkCount returns the number of chunks in the buffer
func (ab *AudioBuffer) ChunkCount() int {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	return len(ab.chunks)
}
