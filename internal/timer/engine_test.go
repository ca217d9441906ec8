package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/sadopc/pomo/internal/store"
)

// recorder collects events delivered to an observer.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// newManualEngine returns an engine whose real ticker never fires during a
// test, so ticks are driven by calling tick directly.
func newManualEngine(t *testing.T, work, brk int) (*Engine, *recorder) {
	t.Helper()
	e := New(work, brk, Options{TickInterval: time.Hour})
	r := &recorder{}
	e.Subscribe(r.observe)
	t.Cleanup(e.Pause)
	return e, r
}

// ============================================================
// Initial state
// ============================================================

func TestNewEngine(t *testing.T) {
	e := New(25, 5, Options{})
	st := e.State()
	if !st.Work || st.Running || st.Remaining != 1500 || st.Total != 1500 {
		t.Fatalf("unexpected initial state: %+v", st)
	}
	if e.options.TickInterval != time.Second {
		t.Fatalf("default tick interval = %v, want 1s", e.options.TickInterval)
	}
}

func TestNewEngineNonPositiveDurations(t *testing.T) {
	e := New(0, -3, Options{})
	if e.workDuration != 1500 || e.breakDuration != 300 {
		t.Fatalf("expected default durations, got %d/%d", e.workDuration, e.breakDuration)
	}
}

// ============================================================
// Start / Pause
// ============================================================

func TestStartEmitsStateChange(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()

	changes := r.ofType(EventStateChange)
	if len(changes) != 1 {
		t.Fatalf("expected 1 state change, got %d", len(changes))
	}
	st := changes[0].State
	if !st.Running || !st.Work || st.Remaining != 1500 {
		t.Fatalf("unexpected snapshot: %+v", st)
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()
	first := e.stopCh
	e.Start()

	if e.stopCh != first {
		t.Fatal("second Start must not register another ticker")
	}
	if n := len(r.ofType(EventStateChange)); n != 1 {
		t.Fatalf("expected 1 state change, got %d", n)
	}
}

func TestStartTwiceSingleSpeed(t *testing.T) {
	e := New(1, 1, Options{TickInterval: 20 * time.Millisecond})
	defer e.Pause()

	e.Start()
	e.Start()
	time.Sleep(110 * time.Millisecond)
	e.Pause()

	// About five ticks at one tick source; a doubled source would be near ten.
	elapsed := 60 - e.State().Remaining
	if elapsed < 2 || elapsed > 7 {
		t.Fatalf("elapsed %d ticks, want roughly 5", elapsed)
	}
}

func TestPause(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()
	e.tick()
	r.reset()

	e.Pause()
	st := e.State()
	if st.Running {
		t.Fatal("engine should be paused")
	}
	if st.Remaining != 1499 {
		t.Fatalf("pause must keep remaining time, got %d", st.Remaining)
	}
	if n := len(r.ofType(EventStateChange)); n != 1 {
		t.Fatalf("expected 1 state change, got %d", n)
	}
}

func TestPauseWhenPausedIsNoop(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Pause()
	if len(r.events) != 0 {
		t.Fatalf("expected no events, got %d", len(r.events))
	}
}

func TestTickAfterPauseIsDiscarded(t *testing.T) {
	e, _ := newManualEngine(t, 25, 5)
	e.Start()
	stale := e.stopCh
	e.Pause()

	e.tickFrom(stale)
	if got := e.State().Remaining; got != 1500 {
		t.Fatalf("stale tick changed remaining to %d", got)
	}

	// A later run must not accept ticks from the old ticker either.
	e.Start()
	e.tickFrom(stale)
	if got := e.State().Remaining; got != 1500 {
		t.Fatalf("stale tick changed remaining to %d", got)
	}
}

// ============================================================
// Tick / completion
// ============================================================

func TestTickDecrements(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()
	e.tick()
	e.tick()

	ticks := r.ofType(EventTick)
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[0].State.Remaining != 1499 || ticks[1].State.Remaining != 1498 {
		t.Fatalf("unexpected tick values: %d, %d", ticks[0].State.Remaining, ticks[1].State.Remaining)
	}
	if !ticks[1].State.Work {
		t.Fatal("tick should carry session type")
	}
}

func TestTickWhenPausedIsNoop(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.tick()
	if e.State().Remaining != 1500 {
		t.Fatal("tick while paused must not count down")
	}
	if len(r.events) != 0 {
		t.Fatal("tick while paused must not emit")
	}
}

func TestCompletionAtZero(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := New(1, 1, Options{TickInterval: time.Hour, Now: func() time.Time { return now }})
	r := &recorder{}
	e.Subscribe(r.observe)
	e.Start()

	for i := 0; i < 60; i++ {
		e.tick()
	}

	completes := r.ofType(EventSessionComplete)
	if len(completes) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(completes))
	}
	sess := completes[0].Session
	if sess == nil {
		t.Fatal("completion must carry a session")
	}
	if sess.Type != store.SessionWork || sess.Duration != 60 || !sess.CompletedAt.Equal(now) {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.ID != "" {
		t.Fatal("engine must not assign ids")
	}

	st := e.State()
	if st.Running || st.Remaining != 0 {
		t.Fatalf("engine should stop at zero: %+v", st)
	}
	if !st.Work {
		t.Fatal("completion must not auto-advance")
	}

	// Further ticks do nothing.
	e.tick()
	if len(r.ofType(EventSessionComplete)) != 1 {
		t.Fatal("no second completion expected")
	}
}

func TestStartAfterCompletionIsNoop(t *testing.T) {
	e, r := newManualEngine(t, 1, 1)
	e.Start()
	for i := 0; i < 60; i++ {
		e.tick()
	}
	r.reset()

	e.Start()
	e.tick()

	if st := e.State(); st.Running || st.Remaining != 0 {
		t.Fatalf("start at zero must not resume: %+v", st)
	}
	if len(r.events) != 0 {
		t.Fatalf("start at zero emitted %d events", len(r.events))
	}

	e.Reset()
	e.Start()
	if st := e.State(); !st.Running || st.Remaining != 60 {
		t.Fatalf("start after reset should run: %+v", st)
	}
}

func TestCompletionEventOrder(t *testing.T) {
	e, r := newManualEngine(t, 1, 1)
	e.SwitchToNextSession()
	e.SetDurations(1, 1)
	r.reset()
	e.Start()
	for i := 0; i < 60; i++ {
		e.tick()
	}

	n := len(r.events)
	if n < 3 {
		t.Fatalf("expected at least 3 events, got %d", n)
	}
	last := r.events[n-3:]
	if last[0].Type != EventTick || last[0].State.Remaining != 0 {
		t.Fatalf("expected final tick at 0, got %+v", last[0])
	}
	if last[1].Type != EventStateChange || last[1].State.Running {
		t.Fatalf("expected pause state change, got %+v", last[1])
	}
	if last[2].Type != EventSessionComplete || last[2].Session.Type != store.SessionBreak {
		t.Fatalf("expected break completion, got %+v", last[2])
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	e, r := newManualEngine(t, 1, 1)
	e.Start()
	e.mu.Lock()
	e.remaining = 0 // as if a tick raced past zero
	e.mu.Unlock()
	e.tick()

	for _, ev := range r.events {
		if ev.State.Remaining < 0 {
			t.Fatalf("negative remaining emitted: %+v", ev)
		}
	}
	if len(r.ofType(EventSessionComplete)) != 1 {
		t.Fatal("expected completion")
	}
}

func TestRealTickerCompletes(t *testing.T) {
	e := New(1, 1, Options{TickInterval: time.Millisecond})
	done := make(chan Event, 1)
	e.Subscribe(func(ev Event) {
		if ev.Type == EventSessionComplete {
			done <- ev
		}
	})
	e.SetDurations(1, 1)
	e.mu.Lock()
	e.remaining = 3
	e.mu.Unlock()
	e.Start()

	select {
	case ev := <-done:
		if ev.State.Running {
			t.Fatal("engine should be paused after completion")
		}
	case <-time.After(2 * time.Second):
		e.Pause()
		t.Fatal("timed out waiting for completion")
	}
}

// ============================================================
// Reset / switch / durations
// ============================================================

func TestReset(t *testing.T) {
	tests := []struct{ work, brk int }{{25, 5}, {1, 1}, {60, 30}, {45, 15}}
	for _, tt := range tests {
		e, _ := newManualEngine(t, tt.work, tt.brk)
		e.SwitchToNextSession()
		e.Start()
		e.tick()
		e.Reset()

		st := e.State()
		if !st.Work || st.Running || st.Remaining != tt.work*60 {
			t.Fatalf("after reset with %d/%d: %+v", tt.work, tt.brk, st)
		}
	}
}

func TestResetWhenPausedEmitsOnce(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Reset()
	if n := len(r.ofType(EventStateChange)); n != 1 {
		t.Fatalf("expected 1 state change, got %d", n)
	}
}

func TestResetWhenRunningEmitsPauseThenReset(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()
	r.reset()
	e.Reset()

	changes := r.ofType(EventStateChange)
	if len(changes) != 2 {
		t.Fatalf("expected 2 state changes, got %d", len(changes))
	}
	if changes[1].State.Remaining != 1500 || !changes[1].State.Work {
		t.Fatalf("last change should carry reset snapshot: %+v", changes[1].State)
	}
}

func TestSwitchToNextSession(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()
	e.tick()
	e.Pause()

	e.SwitchToNextSession()
	st := e.State()
	if st.Work || st.Remaining != 300 {
		t.Fatalf("expected break with 300s, got %+v", st)
	}

	e.SwitchToNextSession()
	st = e.State()
	if !st.Work || st.Remaining != 1500 {
		t.Fatalf("expected work with 1500s, got %+v", st)
	}
	if last := r.events[len(r.events)-1]; last.Type != EventStateChange {
		t.Fatalf("switch should emit state change, got %s", last.Type)
	}
}

func TestSetDurationsWhilePaused(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.SetDurations(50, 10)

	st := e.State()
	if st.Remaining != 3000 || st.Total != 3000 {
		t.Fatalf("paused engine should take new work duration: %+v", st)
	}
	if n := len(r.ofType(EventStateChange)); n != 1 {
		t.Fatalf("expected 1 state change, got %d", n)
	}

	e.SwitchToNextSession()
	if e.State().Remaining != 600 {
		t.Fatal("break duration not applied")
	}
}

func TestSetDurationsWhileRunning(t *testing.T) {
	e, r := newManualEngine(t, 25, 5)
	e.Start()
	e.tick()
	r.reset()

	e.SetDurations(50, 10)
	if got := e.State().Remaining; got != 1499 {
		t.Fatalf("running countdown must not change, got %d", got)
	}
	if len(r.events) != 0 {
		t.Fatal("no event expected while running")
	}

	e.Pause()
	e.SwitchToNextSession()
	e.SwitchToNextSession()
	if got := e.State().Remaining; got != 3000 {
		t.Fatalf("new work duration should apply on switch, got %d", got)
	}
}

func TestSetDurationsIgnoresNonPositive(t *testing.T) {
	e, _ := newManualEngine(t, 25, 5)
	e.SetDurations(0, -1)
	if e.workDuration != 1500 || e.breakDuration != 300 {
		t.Fatalf("durations changed: %d/%d", e.workDuration, e.breakDuration)
	}
}

// ============================================================
// Observers
// ============================================================

func TestUnsubscribe(t *testing.T) {
	e := New(25, 5, Options{TickInterval: time.Hour})
	defer e.Pause()
	a, b := &recorder{}, &recorder{}
	unsubA := e.Subscribe(a.observe)
	e.Subscribe(b.observe)

	e.Start()
	unsubA()
	unsubA() // second call is harmless
	e.Pause()

	if len(a.events) != 1 {
		t.Fatalf("unsubscribed observer got %d events, want 1", len(a.events))
	}
	if len(b.events) != 2 {
		t.Fatalf("remaining observer got %d events, want 2", len(b.events))
	}
}

func TestObserverMayCallEngine(t *testing.T) {
	e := New(25, 5, Options{TickInterval: time.Hour})
	defer e.Pause()
	e.Subscribe(func(ev Event) {
		if ev.Type == EventStateChange && ev.State.Running {
			_ = e.State()
		}
	})
	e.Start() // would deadlock if observers ran under the lock
}

// ============================================================
// Formatting
// ============================================================

func TestFormatTime(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{125, "02:05"},
		{1500, "25:00"},
		{3600, "60:00"},
		{3661, "61:01"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.secs); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestStateProgress(t *testing.T) {
	tests := []struct {
		st   State
		want float64
	}{
		{State{Remaining: 1500, Total: 1500}, 0},
		{State{Remaining: 750, Total: 1500}, 0.5},
		{State{Remaining: 0, Total: 1500}, 1},
		{State{Remaining: 10, Total: 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.st.Progress(); got != tt.want {
			t.Errorf("Progress(%+v) = %v, want %v", tt.st, got, tt.want)
		}
	}
	if (State{Remaining: 65}).Formatted() != "01:05" {
		t.Fatal("Formatted should use FormatTime")
	}
}
