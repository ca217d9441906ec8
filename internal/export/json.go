package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Work       int           `json:"work_sessions"`
	Breaks     int           `json:"break_sessions"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	CompletedAt string `json:"completed_at"`
	DurationSec int    `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

// ToJSON writes sessions with a small summary header to path.
func ToJSON(sessions []store.Session, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	for _, s := range sessions {
		switch s.Type {
		case store.SessionWork:
			export.Work++
		case store.SessionBreak:
			export.Breaks++
		}
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Type:        string(s.Type),
			CompletedAt: s.CompletedAt.Local().Format(time.RFC3339),
			DurationSec: s.Duration,
			Duration:    timer.FormatTime(s.Duration),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
