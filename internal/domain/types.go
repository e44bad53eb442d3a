package domain

import "time"

// Tab is the active view of the client.
type Tab string

const (
	TabUpload  Tab = "upload"
	TabRecord  Tab = "record"
	TabHistory Tab = "history"
)

// Valid reports whether t is one of the known tabs.
func (t Tab) Valid() bool {
	switch t {
	case TabUpload, TabRecord, TabHistory:
		return true
	default:
		return false
	}
}

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonReady              StateReason = "ready"
	ReasonTabChanged         StateReason = "tab_changed"
	ReasonFileSelected       StateReason = "file_selected"
	ReasonRecordingStarted   StateReason = "recording_started"
	ReasonRecordingRestarted StateReason = "recording_restarted"
	ReasonRecordingStopped   StateReason = "recording_stopped"
	ReasonRecordingEmpty     StateReason = "recording_empty"
	ReasonRecordingDiscarded StateReason = "recording_discarded"
	ReasonAnalyzing          StateReason = "analyzing"
	ReasonAnalysisComplete   StateReason = "analysis_complete"
	ReasonAnalysisFailed     StateReason = "analysis_failed"
	ReasonHistoryUpdated     StateReason = "history_updated"
)

// ErrorCode identifies user-visible client errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeMicrophone  ErrorCode = "microphone"
	ErrorCodeAudioStop   ErrorCode = "audio_stop"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeFileRead    ErrorCode = "file_read"
	ErrorCodeAnalysis    ErrorCode = "analysis"
)

// PayloadSource records where an audio payload came from.
type PayloadSource string

const (
	PayloadSourceFile      PayloadSource = "file"
	PayloadSourceRecording PayloadSource = "recording"
)

// AudioPayload is the audio staged for analysis. It only lives in memory.
type AudioPayload struct {
	ID        string
	Name      string
	MIMEType  string
	Data      []byte
	Source    PayloadSource
	CreatedAt time.Time
}

// Size returns the payload length in bytes.
func (p AudioPayload) Size() int {
	return len(p.Data)
}

// RepairSuggestions groups short-term and long-term fixes.
type RepairSuggestions struct {
	Temporary []string `json:"temporary"`
	Permanent []string `json:"permanent"`
}

// AnalysisResult is the backend response to an analysis submission.
type AnalysisResult struct {
	ID                string            `json:"id,omitempty"`
	DamageType        string            `json:"damage_type"`
	Confidence        float64           `json:"confidence"`
	RepairSuggestions RepairSuggestions `json:"repair_suggestions"`
	Timestamp         string            `json:"timestamp,omitempty"`
	FileName          string            `json:"file_name,omitempty"`
}

// HistoryEntry is one prior analysis as listed by the backend.
type HistoryEntry struct {
	ID                string            `json:"id,omitempty"`
	DamageType        string            `json:"damage_type"`
	Confidence        float64           `json:"confidence"`
	FileName          string            `json:"file_name"`
	Timestamp         string            `json:"timestamp"`
	RepairSuggestions RepairSuggestions `json:"repair_suggestions"`
}

// AnalysisDetails is the full record of a single analysis.
type AnalysisDetails struct {
	HistoryEntry
	Features map[string]any `json:"features"`
	FileSize int64          `json:"file_size"`
}

// BackendStatus is the backend health response.
type BackendStatus struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
