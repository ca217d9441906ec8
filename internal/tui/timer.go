package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/pomo/internal/pomodoro"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// engineBridge forwards engine events and saved sessions into the Bubble
// Tea loop. Sends never block the engine's goroutine: when the buffer is
// full the message is dropped, and views re-read the engine state on the
// next message anyway.
type engineBridge struct {
	events      chan tea.Msg
	unsubscribe func()
}

func newEngineBridge(e *timer.Engine, c *pomodoro.Coordinator) *engineBridge {
	b := &engineBridge{events: make(chan tea.Msg, 64)}
	b.unsubscribe = e.Subscribe(func(ev timer.Event) {
		b.send(engineEventMsg(ev))
	})
	if c != nil {
		c.OnSaved(func(sess store.Session, ok bool) {
			b.send(sessionSavedMsg{session: sess, ok: ok})
		})
	}
	return b
}

func (b *engineBridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
	}
}

// wait returns a command delivering the next forwarded message. The app
// re-issues it after every delivery.
func (b *engineBridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}

func (b *engineBridge) close() {
	b.unsubscribe()
}
