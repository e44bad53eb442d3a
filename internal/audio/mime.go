package audio

import (
	"path/filepath"
	"strings"

	"github.com/wailsapp/mimetype"
)

const fallbackMIME = "application/octet-stream"

var extensionMIME = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// DetectMIME picks the content type sent with an audio part. Sniffed audio
// types win; otherwise the file extension decides. Nothing is rejected here.
func DetectMIME(name string, data []byte) string {
	if len(data) > 0 {
		if detected := mimetype.Detect(data).String(); strings.HasPrefix(detected, "audio/") {
			return stripParams(detected)
		}
	}
	if known, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]; ok {
		return known
	}
	return fallbackMIME
}

func stripParams(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return strings.TrimSpace(mime[:i])
	}
	return mime
}

// IsAudioFile reports whether name has an extension DetectMIME knows.
func IsAudioFile(name string) bool {
	_, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]
	return ok
}
