package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/sadopc/pomo/internal/store"
)

// Dispatcher reacts to a completed session: it notifies, pulses, and asks
// whether to continue. Every platform call is best-effort; failures are
// logged and never stop the continue/stop decision.
type Dispatcher struct {
	notifier  Notifier
	haptics   Haptics
	confirmer Confirmer
	settings  func() store.Settings
	log       *log.Logger
}

// Config wires the dispatcher's capabilities. Nil capabilities are treated
// as unsupported; a nil Confirmer always resolves to stop.
type Config struct {
	Notifier  Notifier
	Haptics   Haptics
	Confirmer Confirmer
	// Settings supplies the current preferences. Defaults are used when nil.
	Settings func() store.Settings
	Log      *log.Logger
}

func New(cfg Config) *Dispatcher {
	if cfg.Log == nil {
		cfg.Log = log.New(io.Discard)
	}
	if cfg.Settings == nil {
		cfg.Settings = store.DefaultSettings
	}
	if cfg.Confirmer == nil {
		cfg.Confirmer = Decline{}
	}
	return &Dispatcher{
		notifier:  cfg.Notifier,
		haptics:   cfg.Haptics,
		confirmer: cfg.Confirmer,
		settings:  cfg.Settings,
		log:       cfg.Log,
	}
}

// CompletionMessage composes the notification for a finished session.
func CompletionMessage(sessionType store.SessionType, settings store.Settings) (title, body string) {
	if sessionType == store.SessionWork {
		return "Work Session Complete!",
			fmt.Sprintf("Great job! Time for a %d-minute break.", settings.BreakDuration)
	}
	return "Break Time Over!", "Break time is over. Ready for another work session?"
}

// HandleSessionComplete notifies the user about the finished session, waits
// for their decision and then calls exactly one of onContinue or onStop.
func (d *Dispatcher) HandleSessionComplete(sessionType store.SessionType, onContinue, onStop func()) {
	settings := d.settings()
	title, body := CompletionMessage(sessionType, settings)

	d.notify(Message{Title: title, Body: body, Sound: settings.SoundEnabled})
	if settings.VibrationEnabled {
		d.pulse(Medium)
	}

	next := "Start Work"
	if sessionType == store.SessionWork {
		next = "Start Break"
	}
	proceed := d.confirm(Prompt{
		Title:        title,
		Message:      body + "\n\nWhat would you like to do?",
		CancelLabel:  "Stop Timer",
		ConfirmLabel: next,
	})

	if proceed {
		d.log.Debug("session complete: continue", "type", sessionType)
		if onContinue != nil {
			onContinue()
		}
		return
	}
	d.log.Debug("session complete: stop", "type", sessionType)
	if onStop != nil {
		onStop()
	}
}

// SendReminder notifies how much of the current session is left.
func (d *Dispatcher) SendReminder(remainingSeconds int, sessionType store.SessionType) {
	minutes := (remainingSeconds + 59) / 60
	title := "Break Time"
	if sessionType == store.SessionWork {
		title = "Work Session in Progress"
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	d.notify(Message{
		Title: title,
		Body:  fmt.Sprintf("%d %s remaining", minutes, unit),
		Sound: d.settings().SoundEnabled,
	})
}

// Confirm exposes the dialog capability for other confirmations such as
// resetting the timer. Failures resolve to false.
func (d *Dispatcher) Confirm(p Prompt) bool {
	return d.confirm(p)
}

func (d *Dispatcher) notify(msg Message) {
	if d.notifier == nil {
		return
	}
	defer d.recovered("notify")
	if err := d.notifier.Notify(msg); err != nil {
		d.log.Warn("send notification", "err", err)
	}
}

func (d *Dispatcher) pulse(intensity Intensity) {
	if d.haptics == nil {
		return
	}
	defer d.recovered("haptics")
	if err := d.haptics.Pulse(intensity); err != nil {
		d.log.Debug("trigger haptics", "intensity", intensity, "err", err)
	}
}

func (d *Dispatcher) confirm(p Prompt) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("show dialog", "panic", r)
			ok = false
		}
	}()
	ok, err := d.confirmer.Confirm(p)
	if err != nil {
		d.log.Warn("show dialog", "err", err)
		return false
	}
	return ok
}

func (d *Dispatcher) recovered(op string) {
	if r := recover(); r != nil {
		d.log.Error(op, "panic", r)
	}
}
