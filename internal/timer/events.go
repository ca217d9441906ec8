package timer

import (
	"time"

	"github.com/sadopc/pomo/internal/store"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventTick            EventType = "tick"
	EventStateChange     EventType = "state_change"
	EventSessionComplete EventType = "session_complete"
)

// State is a snapshot of the countdown.
type State struct {
	Remaining int // seconds, never negative
	Total     int // configured seconds of the current interval
	Running   bool
	Work      bool
}

// SessionType reports the kind of interval the snapshot belongs to.
func (s State) SessionType() store.SessionType {
	if s.Work {
		return store.SessionWork
	}
	return store.SessionBreak
}

// Formatted returns Remaining as MM:SS.
func (s State) Formatted() string {
	return FormatTime(s.Remaining)
}

// Progress is the elapsed fraction of the current interval in [0, 1].
func (s State) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Total-s.Remaining) / float64(s.Total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Event is delivered to observers. Session is set only for
// EventSessionComplete.
type Event struct {
	Type    EventType
	State   State
	Session *store.Session
	At      time.Time
}

// Observer receives engine events.
type Observer func(Event)
