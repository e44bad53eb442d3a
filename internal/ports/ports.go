package ports

import (
	"context"
	"io"
	"time"

	"autosonic/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
	MaxDuration time.Duration
}

// AudioSession is a live capture session holding the microphone.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// AnalysisBackend is the external sound classification service.
type AnalysisBackend interface {
	Analyze(ctx context.Context, payload domain.AudioPayload) (domain.AnalysisResult, error)
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	Details(ctx context.Context, id string) (domain.AnalysisDetails, error)
	Health(ctx context.Context) (domain.BackendStatus, error)
}

// Catalog resolves display attributes for damage types.
type Catalog interface {
	Lookup(damageType string) domain.DamageStyle
	Known(damageType string) bool
}

// EventSink emits client state to the UI.
type EventSink interface {
	StateChanged(state domain.ViewState, reason domain.StateReason)
	ClientError(code domain.ErrorCode, detail string)
}
