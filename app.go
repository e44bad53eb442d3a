package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"autosonic/internal/bootstrap"
	"autosonic/internal/config"
	"autosonic/internal/domain"
	"autosonic/internal/usecase"
)

const (
	eventState = "autosonic:state"
	eventError = "autosonic:error"
)

var audioFilter = runtime.FileFilter{
	DisplayName: "Audio files",
	Pattern:     "*.wav;*.mp3;*.m4a;*.mp4;*.aac;*.ogg;*.oga;*.opus;*.flac;*.webm",
}

// App is the Wails application root.
type App struct {
	ctx context.Context
	log logger.Logger

	controller *usecase.ClientController
	cfg        config.Config
	bootErr    error
}

func NewApp(cfg config.Config, bootErr error, log logger.Logger) *App {
	return &App{cfg: cfg, bootErr: bootErr, log: log}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	if a.bootErr != nil {
		a.ClientError(domain.ErrorCodeStartup, a.bootErr.Error())
		return
	}

	services, err := bootstrap.Build(a.cfg, a, a.log)
	if err != nil {
		a.bootErr = err
		a.ClientError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.controller = services.Controller
	if err := services.Inbox.Start(ctx); err != nil {
		a.log.Warning(fmt.Sprintf("drop folder unavailable: %v", err))
	}
	a.StateChanged(a.controller.State(), domain.ReasonReady)
	go func() {
		if err := a.controller.RefreshHistory(ctx); err == nil {
			a.log.Debug("initial history loaded")
		}
	}()
}

// SetTab switches between the upload, record and history tabs.
func (a *App) SetTab(tab string) (domain.ViewState, error) {
	if err := a.requireReady(); err != nil {
		return domain.ViewState{}, err
	}
	if err := a.controller.SetTab(a.ctx, domain.Tab(tab)); err != nil {
		return domain.ViewState{}, err
	}
	return a.controller.State(), nil
}

// ChooseFile opens the native file picker. Cancelling keeps the current
// payload.
func (a *App) ChooseFile() (domain.ViewState, error) {
	if err := a.requireReady(); err != nil {
		return domain.ViewState{}, err
	}
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title:   "Select an audio recording",
		Filters: []runtime.FileFilter{audioFilter, {DisplayName: "All files", Pattern: "*"}},
	})
	if err != nil {
		return domain.ViewState{}, err
	}
	if path == "" {
		return a.controller.State(), nil
	}
	return a.SelectFile(path)
}

// SelectFile makes the file at path the active payload.
func (a *App) SelectFile(path string) (domain.ViewState, error) {
	if err := a.requireReady(); err != nil {
		return domain.ViewState{}, err
	}
	if err := a.controller.SelectFile(path); err != nil {
		return domain.ViewState{}, err
	}
	return a.controller.State(), nil
}

// StartRecording acquires the microphone.
func (a *App) StartRecording() (domain.ViewState, error) {
	if err := a.requireReady(); err != nil {
		return domain.ViewState{}, err
	}
	if err := a.controller.StartRecording(a.ctx); err != nil {
		return domain.ViewState{}, err
	}
	return a.controller.State(), nil
}

// StopRecording releases the microphone and stages the recording.
func (a *App) StopRecording() (domain.ViewState, error) {
	if err := a.requireReady(); err != nil {
		return domain.ViewState{}, err
	}
	if err := a.controller.StopRecording(a.ctx); err != nil {
		if errors.Is(err, usecase.ErrNoActiveRecording) {
			return a.controller.State(), nil
		}
		return domain.ViewState{}, err
	}
	return a.controller.State(), nil
}

// AbortRecording discards an in-progress recording.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.controller.AbortRecording(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveRecording) {
			return nil
		}
		return err
	}
	return nil
}

// Analyze submits the active payload to the backend.
func (a *App) Analyze() (domain.ViewState, error) {
	if err := a.requireReady(); err != nil {
		return domain.ViewState{}, err
	}
	if _, err := a.controller.Analyze(a.ctx); err != nil {
		return domain.ViewState{}, err
	}
	return a.controller.State(), nil
}

// RefreshHistory reloads past analyses. Failures keep the stale list.
func (a *App) RefreshHistory() domain.ViewState {
	if a.requireReady() != nil {
		return a.GetState()
	}
	_ = a.controller.RefreshHistory(a.ctx)
	return a.controller.State()
}

// GetAnalysis returns the stored details of one past analysis.
func (a *App) GetAnalysis(id string) (domain.AnalysisDetails, error) {
	if err := a.requireReady(); err != nil {
		return domain.AnalysisDetails{}, err
	}
	return a.controller.AnalysisDetails(a.ctx, id)
}

// CheckBackend reports whether the analysis service answers.
func (a *App) CheckBackend() (domain.BackendStatus, error) {
	if err := a.requireReady(); err != nil {
		return domain.BackendStatus{}, err
	}
	return a.controller.CheckBackend(a.ctx)
}

// GetState returns the current view state.
func (a *App) GetState() domain.ViewState {
	if a.controller == nil {
		return domain.ViewState{Tab: domain.TabUpload, History: []domain.HistoryRow{}}
	}
	return a.controller.State()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	info := map[string]string{
		"backend":          a.cfg.Backend.BaseURL,
		"timeout":          a.cfg.Backend.Timeout.String(),
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"sampleRate":       fmt.Sprint(a.cfg.Audio.SampleRate),
		"catalogFile":      a.cfg.Catalog.Path,
		"dropFolder":       a.cfg.Inbox.Dir,
		"configFile":       a.cfg.File,
	}
	if a.cfg.Audio.MaxDuration > 0 {
		info["maxRecording"] = a.cfg.Audio.MaxDuration.String()
	}
	return info
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// StateChanged emits view state updates to the frontend.
func (a *App) StateChanged(state domain.ViewState, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, map[string]any{
		"state":   state,
		"reason":  string(reason),
		"message": reasonMessage(reason),
	})
}

// ClientError emits user-visible errors to the UI.
func (a *App) ClientError(code domain.ErrorCode, detail string) {
	if a.log != nil {
		a.log.Error(fmt.Sprintf("%s: %s", code, detail))
	}
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func reasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonReady:
		return "Ready"
	case domain.ReasonTabChanged:
		return ""
	case domain.ReasonFileSelected:
		return "Audio selected"
	case domain.ReasonRecordingStarted:
		return "Recording..."
	case domain.ReasonRecordingRestarted:
		return "Recording restarted; previous capture discarded"
	case domain.ReasonRecordingStopped:
		return "Recording ready for analysis"
	case domain.ReasonRecordingEmpty:
		return "No audio captured"
	case domain.ReasonRecordingDiscarded:
		return "Recording discarded"
	case domain.ReasonAnalyzing:
		return "Analyzing..."
	case domain.ReasonAnalysisComplete:
		return "Analysis complete"
	case domain.ReasonAnalysisFailed:
		return "Analysis failed"
	case domain.ReasonHistoryUpdated:
		return "History updated"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeMicrophone:
		return "Could not access microphone. Please check permissions."
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio capture issue"
	case domain.ErrorCodeFileRead:
		return "Could not read the selected file"
	case domain.ErrorCodeAnalysis:
		return "Error analyzing audio. Please try again."
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
