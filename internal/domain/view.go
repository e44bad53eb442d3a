package domain

// DamageStyle is how a damage type is presented.
type DamageStyle struct {
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
	Icon  string `json:"icon" yaml:"icon"`
}

// PayloadSummary describes the active payload without its bytes.
type PayloadSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	MIMEType string        `json:"mimeType"`
	Source   PayloadSource `json:"source"`
	Size     int           `json:"size"`
	SizeText string        `json:"sizeText"`
}

// ResultView is the rendered form of the last analysis result.
type ResultView struct {
	Result         AnalysisResult `json:"result"`
	Style          DamageStyle    `json:"style"`
	ConfidenceText string         `json:"confidenceText"`
}

// HistoryRow is one rendered history entry.
type HistoryRow struct {
	Entry          HistoryEntry `json:"entry"`
	Style          DamageStyle  `json:"style"`
	ConfidenceText string       `json:"confidenceText"`
	When           string       `json:"when"`
	Age            string       `json:"age"`
}

// ViewState is an immutable snapshot of everything the UI renders.
type ViewState struct {
	Tab         Tab             `json:"tab"`
	IsRecording bool            `json:"isRecording"`
	IsAnalyzing bool            `json:"isAnalyzing"`
	CanAnalyze  bool            `json:"canAnalyze"`
	Payload     *PayloadSummary `json:"payload,omitempty"`
	Result      *ResultView     `json:"result,omitempty"`
	History     []HistoryRow    `json:"history"`
}
