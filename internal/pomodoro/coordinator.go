// Package pomodoro ties the timer engine to persistence and the completion
// dispatcher.
package pomodoro

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// Engine is the part of the timer the coordinator drives.
type Engine interface {
	Subscribe(timer.Observer) func()
	Start()
	Pause()
	Reset()
	SwitchToNextSession()
	SetDurations(workMinutes, breakMinutes int)
	State() timer.State
}

// Store persists sessions and settings.
type Store interface {
	SaveSession(store.Session) (store.Session, bool)
	SaveSettings(store.Settings) bool
	GetSettings() store.Settings
}

// Dispatcher resolves what happens after a session completes.
type Dispatcher interface {
	HandleSessionComplete(sessionType store.SessionType, onContinue, onStop func())
}

// Coordinator persists every completed session and hands the continue/stop
// decision to the dispatcher. Dispatch runs on its own goroutine because
// the decision may wait on the user indefinitely.
type Coordinator struct {
	engine     Engine
	store      Store
	dispatcher Dispatcher
	log        *log.Logger

	unsubscribe func()
	wg          sync.WaitGroup

	mu      sync.Mutex
	onSaved func(store.Session, bool)
}

func New(engine Engine, s Store, d Dispatcher, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Coordinator{
		engine:     engine,
		store:      s,
		dispatcher: d,
		log:        logger,
	}
	c.unsubscribe = engine.Subscribe(c.observe)
	return c
}

// OnSaved registers a hook called after each completed session has been
// persisted (ok reports whether the save succeeded).
func (c *Coordinator) OnSaved(fn func(sess store.Session, ok bool)) {
	c.mu.Lock()
	c.onSaved = fn
	c.mu.Unlock()
}

// LoadSettings reads the stored settings and applies their durations.
func (c *Coordinator) LoadSettings() store.Settings {
	settings := c.store.GetSettings()
	c.engine.SetDurations(settings.WorkDuration, settings.BreakDuration)
	return settings
}

// ApplySettings saves settings and updates the engine. The engine is
// updated even when saving fails so the change holds for this run.
func (c *Coordinator) ApplySettings(settings store.Settings) bool {
	ok := c.store.SaveSettings(settings)
	if !ok {
		c.log.Warn("settings not persisted")
	}
	c.engine.SetDurations(settings.WorkDuration, settings.BreakDuration)
	return ok
}

// Continue advances to the next session and starts it.
func (c *Coordinator) Continue() {
	c.engine.SwitchToNextSession()
	c.engine.Start()
}

// Stop returns the engine to the start of a work session.
func (c *Coordinator) Stop() {
	c.engine.Reset()
}

// Skip moves to the next session without starting it. It is refused while
// the countdown is running.
func (c *Coordinator) Skip() bool {
	if c.engine.State().Running {
		return false
	}
	c.engine.SwitchToNextSession()
	return true
}

// Wait blocks until in-flight completion handling has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close stops listening to the engine and pauses it. It does not wait for
// a pending dialog, which may never be answered once the UI is gone.
func (c *Coordinator) Close() {
	c.unsubscribe()
	c.engine.Pause()
}

func (c *Coordinator) observe(ev timer.Event) {
	if ev.Type != timer.EventSessionComplete || ev.Session == nil {
		return
	}
	sess := *ev.Session

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.handleComplete(sess)
	}()
}

func (c *Coordinator) handleComplete(sess store.Session) {
	saved, ok := c.store.SaveSession(sess)
	if ok {
		c.log.Info("session completed", "id", saved.ID, "type", saved.Type, "duration", saved.Duration)
	} else {
		c.log.Warn("session not persisted", "type", sess.Type)
	}

	c.mu.Lock()
	hook := c.onSaved
	c.mu.Unlock()
	if hook != nil {
		hook(saved, ok)
	}

	c.dispatcher.HandleSessionComplete(sess.Type, c.Continue, c.Stop)
}
