package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewHistory
	viewStats
	viewSettings
)

var viewNames = []string{"Timer", "History", "Stats", "Settings"}

// --- Messages ---

type engineEventMsg timer.Event

type sessionSavedMsg struct {
	session store.Session
	ok      bool
}

type confirmRequestMsg confirmRequest

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type resetConfirmedMsg struct{ ok bool }
type clearConfirmedMsg struct{ ok bool }

// --- Helpers ---

func sessionLabel(t store.SessionType) string {
	if t == store.SessionWork {
		return "Work Session"
	}
	return "Break Time"
}

func sessionIcon(t store.SessionType) string {
	if t == store.SessionWork {
		return "🍅"
	}
	return "☕"
}

// formatCompleted renders a completion time relative to now: "Today 14:05",
// "Yesterday 09:30" or "Mar 4 16:20".
func formatCompleted(at, now time.Time) string {
	at = at.Local()
	now = now.Local()
	y, m, d := at.Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && d == nd {
		return "Today " + at.Format("15:04")
	}
	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if y == yy && m == ym && d == yd {
		return "Yesterday " + at.Format("15:04")
	}
	return at.Format("Jan 2 15:04")
}

// formatMinutes rounds seconds to whole minutes.
func formatMinutes(secs int) string {
	mins := (secs + 30) / 60
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}
