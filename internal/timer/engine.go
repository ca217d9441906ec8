package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/sadopc/pomo/internal/store"
)

// Options contains runtime options for the Engine.
type Options struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Engine is the work/break countdown state machine.
//
// All state sits behind mu, which is held only for the duration of one
// operation. Observers are always called after mu is released, on the
// goroutine that caused the event: the caller for Start/Pause/Reset/
// SwitchToNextSession/SetDurations and the ticker goroutine for ticks and
// completions.
type Engine struct {
	mu sync.Mutex

	options       Options
	workDuration  int
	breakDuration int
	remaining     int
	running       bool
	work          bool

	stopCh chan struct{}

	nextID    int
	observers map[int]Observer
	order     []int
}

// New creates a paused Engine positioned at the start of a work session.
func New(workMinutes, breakMinutes int, options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if workMinutes <= 0 {
		workMinutes = 25
	}
	if breakMinutes <= 0 {
		breakMinutes = 5
	}

	e := &Engine{
		options:       options,
		workDuration:  workMinutes * 60,
		breakDuration: breakMinutes * 60,
		work:          true,
		observers:     make(map[int]Observer),
	}
	e.remaining = e.workDuration
	return e
}

// Subscribe registers an observer and returns a function that removes it.
func (e *Engine) Subscribe(fn Observer) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	e.order = append(e.order, id)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.observers, id)
			for i, v := range e.order {
				if v == id {
					e.order = append(e.order[:i], e.order[i+1:]...)
					break
				}
			}
		})
	}
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Start begins the countdown. Calling it while running does nothing, so
// there is never more than one ticker. A finished session has nothing left to
// count, so Start is also a no-op until Reset or SwitchToNextSession.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.remaining <= 0 {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	go e.run(e.stopCh)
	events := e.changeLocked()
	e.mu.Unlock()

	e.deliver(events...)
}

// Pause stops the countdown. Calling it while paused does nothing.
func (e *Engine) Pause() {
	e.mu.Lock()
	events := e.pauseLocked()
	e.mu.Unlock()

	e.deliver(events...)
}

// Reset pauses and returns to the beginning of a work session.
func (e *Engine) Reset() {
	e.mu.Lock()
	events := e.pauseLocked()
	e.work = true
	e.remaining = e.workDuration
	events = append(events, e.changeLocked()...)
	e.mu.Unlock()

	e.deliver(events...)
}

// SwitchToNextSession flips between work and break and loads the new
// session's full duration. It does not check the running state; callers
// decide whether switching mid-countdown is allowed.
func (e *Engine) SwitchToNextSession() {
	e.mu.Lock()
	e.work = !e.work
	e.remaining = e.durationLocked()
	events := e.changeLocked()
	e.mu.Unlock()

	e.deliver(events...)
}

// SetDurations updates both durations. A paused engine also reloads the
// current session's remaining time; a running countdown is left alone and
// picks the new values up on the next switch. Non-positive values are
// ignored.
func (e *Engine) SetDurations(workMinutes, breakMinutes int) {
	e.mu.Lock()
	if workMinutes > 0 {
		e.workDuration = workMinutes * 60
	}
	if breakMinutes > 0 {
		e.breakDuration = breakMinutes * 60
	}
	var events []Event
	if !e.running {
		e.remaining = e.durationLocked()
		events = e.changeLocked()
	}
	e.mu.Unlock()

	e.deliver(events...)
}

func (e *Engine) run(stopCh chan struct{}) {
	ticker := time.NewTicker(e.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			e.tickFrom(stopCh)
		}
	}
}

// tick advances the countdown by one second.
func (e *Engine) tick() {
	e.mu.Lock()
	stopCh := e.stopCh
	e.mu.Unlock()
	e.tickFrom(stopCh)
}

func (e *Engine) tickFrom(stopCh chan struct{}) {
	e.mu.Lock()
	// A ticker that lost the race with Pause must not count down.
	if !e.running || e.stopCh != stopCh {
		e.mu.Unlock()
		return
	}

	e.remaining--
	if e.remaining < 0 {
		e.remaining = 0
	}
	events := []Event{{
		Type:  EventTick,
		State: e.stateLocked(),
		At:    e.options.Now(),
	}}
	if e.remaining == 0 {
		events = append(events, e.completeLocked()...)
	}
	e.mu.Unlock()

	e.deliver(events...)
}

func (e *Engine) completeLocked() []Event {
	events := e.pauseLocked()
	duration := e.durationLocked()
	session := &store.Session{
		Type:        e.stateLocked().SessionType(),
		Duration:    duration,
		CompletedAt: e.options.Now(),
	}
	return append(events, Event{
		Type:    EventSessionComplete,
		State:   e.stateLocked(),
		Session: session,
		At:      session.CompletedAt,
	})
}

func (e *Engine) pauseLocked() []Event {
	if !e.running {
		return nil
	}
	e.running = false
	close(e.stopCh)
	e.stopCh = nil
	return e.changeLocked()
}

func (e *Engine) changeLocked() []Event {
	return []Event{{
		Type:  EventStateChange,
		State: e.stateLocked(),
		At:    e.options.Now(),
	}}
}

func (e *Engine) stateLocked() State {
	return State{
		Remaining: e.remaining,
		Total:     e.durationLocked(),
		Running:   e.running,
		Work:      e.work,
	}
}

func (e *Engine) durationLocked() int {
	if e.work {
		return e.workDuration
	}
	return e.breakDuration
}

func (e *Engine) deliver(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.mu.Lock()
	observers := make([]Observer, 0, len(e.order))
	for _, id := range e.order {
		observers = append(observers, e.observers[id])
	}
	e.mu.Unlock()

	for _, event := range events {
		for _, fn := range observers {
			fn(event)
		}
	}
}

// FormatTime renders seconds as zero-padded MM:SS. Minutes do not roll over
// into hours.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
