package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"autosonic/internal/domain"
	"autosonic/internal/ports"
)

// Input is the raw client state a ViewState is rendered from.
type Input struct {
	Tab         domain.Tab
	IsRecording bool
	IsAnalyzing bool
	Payload     *domain.AudioPayload
	Result      *domain.AnalysisResult
	History     []domain.HistoryEntry
}

// Render builds the UI snapshot for in.
func Render(in Input, catalog ports.Catalog, now time.Time) domain.ViewState {
	state := domain.ViewState{
		Tab:         in.Tab,
		IsRecording: in.IsRecording,
		IsAnalyzing: in.IsAnalyzing,
		CanAnalyze:  CanAnalyze(in.Payload != nil, in.IsAnalyzing),
		Payload:     Summarize(in.Payload),
		History:     HistoryRows(in.History, catalog, now),
	}
	if in.Result != nil {
		state.Result = &domain.ResultView{
			Result:         *in.Result,
			Style:          catalog.Lookup(in.Result.DamageType),
			ConfidenceText: ConfidenceText(in.Result.Confidence),
		}
	}
	return state
}

// CanAnalyze gates the analyze control.
func CanAnalyze(hasPayload bool, analyzing bool) bool {
	return hasPayload && !analyzing
}

// ConfidenceText formats a 0..1 confidence as a percentage.
func ConfidenceText(confidence float64) string {
	return fmt.Sprintf("%.1f%% confidence", confidence*100)
}

// Summarize describes payload without its bytes. Nil in, nil out.
func Summarize(payload *domain.AudioPayload) *domain.PayloadSummary {
	if payload == nil {
		return nil
	}
	return &domain.PayloadSummary{
		ID:       payload.ID,
		Name:     payload.Name,
		MIMEType: payload.MIMEType,
		Source:   payload.Source,
		Size:     payload.Size(),
		SizeText: humanize.Bytes(uint64(payload.Size())),
	}
}

// HistoryRows renders one row per entry, keeping backend order.
func HistoryRows(entries []domain.HistoryEntry, catalog ports.Catalog, now time.Time) []domain.HistoryRow {
	return lo.Map(entries, func(entry domain.HistoryEntry, _ int) domain.HistoryRow {
		row := domain.HistoryRow{
			Entry:          entry,
			Style:          catalog.Lookup(entry.DamageType),
			ConfidenceText: ConfidenceText(entry.Confidence),
			When:           entry.Timestamp,
		}
		if ts, ok := ParseTimestamp(entry.Timestamp); ok {
			row.When = ts.UTC().Format("Jan 2, 2006 15:04 UTC")
			row.Age = humanize.RelTime(ts, now, "ago", "from now")
		}
		return row
	})
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO form the backend
// emits for UTC datetimes.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
