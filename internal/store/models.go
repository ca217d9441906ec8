package store

import "time"

type SessionType string

const (
	SessionWork  SessionType = "work"
	SessionBreak SessionType = "break"
)

func (t SessionType) Valid() bool {
	return t == SessionWork || t == SessionBreak
}

// Session is one completed interval.
type Session struct {
	ID          string      `json:"id"`
	Type        SessionType `json:"type"`
	Duration    int         `json:"duration"` // seconds
	CompletedAt time.Time   `json:"completedAt"`
}

// Settings is the user preference record. Durations are in minutes.
type Settings struct {
	WorkDuration     int  `json:"workDuration"`
	BreakDuration    int  `json:"breakDuration"`
	SoundEnabled     bool `json:"soundEnabled"`
	VibrationEnabled bool `json:"vibrationEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkDuration:     25,
		BreakDuration:    5,
		SoundEnabled:     true,
		VibrationEnabled: true,
	}
}

// Counts aggregates sessions by type.
type Counts struct {
	Sessions      int
	WorkSessions  int
	BreakSessions int
}

type Stats struct {
	Total Counts
	Today Counts
}

// DayCount is the number of sessions completed on one local calendar day.
type DayCount struct {
	Date   time.Time
	Work   int
	Breaks int
}
