package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"autosonic/internal/audio"
	"autosonic/internal/domain"
	"autosonic/internal/ports"
	"autosonic/internal/view"
)

var (
	ErrNoPayload         = errors.New("no audio selected for analysis")
	ErrAnalysisInFlight  = errors.New("an analysis is already in progress")
	ErrNoActiveRecording = errors.New("no active recording")
	ErrUnknownTab        = errors.New("unknown tab")
)

const defaultRecordingName = "recording.wav"

// Config controls recording behavior.
type Config struct {
	Audio         ports.AudioConfig
	ChunkSize     int
	RecordingName string
}

// ClientController owns the client state: active tab, staged payload,
// last result, history, and the recording and analysis flags. Every
// change is pushed to the EventSink as a fresh ViewState.
type ClientController struct {
	audio   ports.AudioCapture
	backend ports.AnalysisBackend
	catalog ports.Catalog
	events  ports.EventSink
	log     logger.Logger
	cfg     Config

	now      func() time.Time
	readFile func(string) ([]byte, error)

	// recordMu serializes start, stop and abort so the microphone is
	// never held by two sessions.
	recordMu sync.Mutex

	mu             sync.Mutex
	tab            domain.Tab
	payload        *domain.AudioPayload
	result         *domain.AnalysisResult
	history        []domain.HistoryEntry
	historyStarted uint64
	historyApplied uint64
	analyzing      bool
	recording      *activeRecording
}

func NewClientController(
	audioCapture ports.AudioCapture,
	backend ports.AnalysisBackend,
	catalog ports.Catalog,
	events ports.EventSink,
	log logger.Logger,
	cfg Config,
) *ClientController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.RecordingName == "" {
		cfg.RecordingName = defaultRecordingName
	}
	return &ClientController{
		audio:    audioCapture,
		backend:  backend,
		catalog:  catalog,
		events:   events,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
		readFile: os.ReadFile,
		tab:      domain.TabUpload,
		history:  []domain.HistoryEntry{},
	}
}

// State returns the current UI snapshot.
func (c *ClientController) State() domain.ViewState {
	c.mu.Lock()
	in := view.Input{
		Tab:         c.tab,
		IsRecording: c.recording != nil,
		IsAnalyzing: c.analyzing,
		Payload:     c.payload,
		Result:      c.result,
		History:     c.history,
	}
	c.mu.Unlock()
	return view.Render(in, c.catalog, c.now())
}

// SetTab switches the active tab. Opening the history tab refreshes it.
func (c *ClientController) SetTab(ctx context.Context, tab domain.Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}

	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()
	c.emit(domain.ReasonTabChanged)

	if tab == domain.TabHistory {
		_ = c.RefreshHistory(ctx)
	}
	return nil
}

// SelectFile reads path and makes it the active payload. The format is
// not checked; the backend rejects what it cannot analyze.
func (c *ClientController) SelectFile(path string) error {
	data, err := c.readFile(path)
	if err != nil {
		c.events.ClientError(domain.ErrorCodeFileRead, err.Error())
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	name := filepath.Base(path)
	c.SelectPayload(domain.AudioPayload{
		Name:     name,
		MIMEType: audio.DetectMIME(name, data),
		Data:     data,
		Source:   domain.PayloadSourceFile,
	})
	return nil
}

// SelectPayload replaces the active payload.
func (c *ClientController) SelectPayload(payload domain.AudioPayload) {
	c.setPayload(payload, domain.ReasonFileSelected)
}

// StartRecording acquires the microphone. A recording already in progress
// is released and its capture discarded.
func (c *ClientController) StartRecording(ctx context.Context) error {
	c.recordMu.Lock()
	defer c.recordMu.Unlock()

	c.mu.Lock()
	previous := c.recording
	c.recording = nil
	c.mu.Unlock()

	if previous != nil {
		c.release(previous)
	}

	recordingCtx, cancel := context.WithCancel(ctx)
	session, err := c.audio.Start(recordingCtx, c.cfg.Audio)
	if err != nil {
		cancel()
		c.events.ClientError(domain.ErrorCodeMicrophone, err.Error())
		if previous != nil {
			c.emit(domain.ReasonRecordingDiscarded)
		}
		return err
	}

	active := &activeRecording{
		cancel:  cancel,
		session: session,
		chunks:  newChunkBuffer(),
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	c.recording = active
	c.mu.Unlock()

	go captureChunks(active.session, active.chunks, c.cfg.ChunkSize, c.events, active.done)
	go c.watchCapture(active)

	reason := domain.ReasonRecordingStarted
	if previous != nil {
		reason = domain.ReasonRecordingRestarted
	}
	c.log.Info("recording started")
	c.emit(reason)
	return nil
}

// StopRecording releases the microphone and stages the captured audio as
// the active payload. No captured audio yields an empty payload.
func (c *ClientController) StopRecording(_ context.Context) error {
	c.recordMu.Lock()
	defer c.recordMu.Unlock()

	active, err := c.takeRecording()
	if err != nil {
		return err
	}
	c.finalize(active)
	return nil
}

// AbortRecording releases the microphone and discards the capture. The
// previous payload stays active.
func (c *ClientController) AbortRecording() error {
	c.recordMu.Lock()
	defer c.recordMu.Unlock()

	active, err := c.takeRecording()
	if err != nil {
		return err
	}
	c.release(active)
	c.emit(domain.ReasonRecordingDiscarded)
	return nil
}

// Analyze submits the active payload. Only one analysis runs at a time.
// On failure the previous result and history are left untouched.
func (c *ClientController) Analyze(ctx context.Context) (domain.AnalysisResult, error) {
	c.mu.Lock()
	if c.payload == nil {
		c.mu.Unlock()
		return domain.AnalysisResult{}, ErrNoPayload
	}
	if c.analyzing {
		c.mu.Unlock()
		return domain.AnalysisResult{}, ErrAnalysisInFlight
	}
	c.analyzing = true
	payload := *c.payload
	c.mu.Unlock()
	c.emit(domain.ReasonAnalyzing)

	result, err := c.backend.Analyze(ctx, payload)

	c.mu.Lock()
	c.analyzing = false
	if err == nil {
		stored := result
		c.result = &stored
	}
	c.mu.Unlock()

	if err == nil && !c.catalog.Known(result.DamageType) {
		c.log.Warning(fmt.Sprintf("damage type %q is not in the catalog", result.DamageType))
	}

	if err != nil {
		c.log.Error(fmt.Sprintf("analysis of %s failed: %v", payload.Name, err))
		c.events.ClientError(domain.ErrorCodeAnalysis, err.Error())
		c.emit(domain.ReasonAnalysisFailed)
		return domain.AnalysisResult{}, err
	}

	c.emit(domain.ReasonAnalysisComplete)
	_ = c.RefreshHistory(ctx)
	return result, nil
}

// RefreshHistory replaces the history list. Failures are only logged and
// the current list stays as it was. A response older than the one already
// shown is dropped.
func (c *ClientController) RefreshHistory(ctx context.Context) error {
	c.mu.Lock()
	c.historyStarted++
	seq := c.historyStarted
	c.mu.Unlock()

	entries, err := c.backend.History(ctx)
	if err != nil {
		c.log.Warning(fmt.Sprintf("history refresh failed: %v", err))
		return err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	c.mu.Lock()
	if seq < c.historyApplied {
		c.mu.Unlock()
		c.log.Debug("dropped stale history response")
		return nil
	}
	c.historyApplied = seq
	c.history = entries
	c.mu.Unlock()
	c.emit(domain.ReasonHistoryUpdated)
	return nil
}

// AnalysisDetails fetches the full record of one past analysis.
func (c *ClientController) AnalysisDetails(ctx context.Context, id string) (domain.AnalysisDetails, error) {
	return c.backend.Details(ctx, id)
}

// CheckBackend reports the backend health message.
func (c *ClientController) CheckBackend(ctx context.Context) (domain.BackendStatus, error) {
	return c.backend.Health(ctx)
}

func (c *ClientController) takeRecording() (*activeRecording, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recording == nil {
		return nil, ErrNoActiveRecording
	}
	active := c.recording
	c.recording = nil
	return active, nil
}

// watchCapture finalizes a recording whose capture ended on its own, for
// example when the duration limit is reached or the device goes away.
func (c *ClientController) watchCapture(active *activeRecording) {
	<-active.done

	c.mu.Lock()
	current := c.recording == active
	if current {
		c.recording = nil
	}
	c.mu.Unlock()

	if current {
		c.finalize(active)
	}
}

// release frees the device and waits for the capture goroutine.
func (c *ClientController) release(active *activeRecording) error {
	err := active.session.Stop()
	<-active.done
	active.cancel()
	return err
}

func (c *ClientController) finalize(active *activeRecording) {
	if err := c.release(active); err != nil {
		c.events.ClientError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	payload := domain.AudioPayload{
		Name:     c.cfg.RecordingName,
		MIMEType: "audio/wav",
		Data:     []byte{},
		Source:   domain.PayloadSourceRecording,
	}
	reason := domain.ReasonRecordingEmpty
	if active.chunks.Count() > 0 {
		pcm := alignPCM(active.chunks.Bytes(), c.cfg.Audio.Channels)
		payload.Data = audio.EncodeWAV(pcm, c.cfg.Audio.SampleRate, c.cfg.Audio.Channels)
		reason = domain.ReasonRecordingStopped
	}

	c.log.Info(fmt.Sprintf("recording stopped: %d chunks", active.chunks.Count()))
	c.setPayload(payload, reason)
}

func (c *ClientController) setPayload(payload domain.AudioPayload, reason domain.StateReason) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = c.now()
	}

	c.mu.Lock()
	c.payload = &payload
	c.mu.Unlock()
	c.emit(reason)
}

func (c *ClientController) emit(reason domain.StateReason) {
	c.events.StateChanged(c.State(), reason)
}
