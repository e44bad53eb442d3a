package usecase

import (
	"sync"

	"autosonic/internal/ports"
)

// activeRecording holds the microphone between start and stop.
type activeRecording struct {
	cancel  func()
	session ports.AudioSession
	chunks  *chunkBuffer
	done    chan struct{}
}

// chunkBuffer collects captured PCM chunks in arrival order.
type chunkBuffer struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
}

func newChunkBuffer() *chunkBuffer {
	return &chunkBuffer{}
}

func (b *chunkBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = append(b.chunks, append([]byte(nil), chunk...))
	b.size += len(chunk)
}

func (b *chunkBuffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Bytes concatenates every chunk into one slice.
func (b *chunkBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, 0, b.size)
	for _, chunk := range b.chunks {
		out = append(out, chunk...)
	}
	return out
}
