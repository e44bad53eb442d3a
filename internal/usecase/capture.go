package usecase

import (
	"errors"
	"fmt"
	"io"

	"autosonic/internal/domain"
	"autosonic/internal/ports"
)

// captureChunks drains the microphone session into buffer until the
// session ends. Read errors other than EOF are reported to the UI.
func captureChunks(
	session ports.AudioSession,
	buffer *chunkBuffer,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := session.Read(buf)
		if n > 0 {
			buffer.Append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.ClientError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

// alignPCM trims a trailing partial sample frame.
func alignPCM(pcm []byte, channels int) []byte {
	if channels <= 0 {
		channels = 1
	}
	frame := 2 * channels
	return pcm[:len(pcm)-len(pcm)%frame]
}
