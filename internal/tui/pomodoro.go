package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/notify"
	"github.com/sadopc/pomo/internal/pomodoro"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// pomodoroModel is the Timer tab: countdown, controls and today's counts.
type pomodoroModel struct {
	engine     *timer.Engine
	coord      *pomodoro.Coordinator
	dispatcher *notify.Dispatcher
	store      *store.Store
	width      int
	height     int

	state    timer.State
	today    store.Counts
	focused  int // seconds of work completed today
	progress progress.Model
}

func newPomodoroModel(d Deps) pomodoroModel {
	return pomodoroModel{
		engine:     d.Engine,
		coord:      d.Coordinator,
		dispatcher: d.Dispatcher,
		store:      d.Store,
		state:      d.Engine.State(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.progress.Width = max(10, w-16)
}

type todayDataMsg struct {
	today   store.Counts
	focused int
}

func (p pomodoroModel) refresh() tea.Cmd {
	return func() tea.Msg {
		msg := todayDataMsg{today: p.store.GetStats().Today}
		for _, sess := range p.store.GetTodaySessions() {
			if sess.Type == store.SessionWork {
				msg.focused += sess.Duration
			}
		}
		return msg
	}
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case engineEventMsg:
		p.state = p.engine.State()
		return p, nil

	case todayDataMsg:
		p.today = msg.today
		p.focused = msg.focused
		return p, nil

	case resetConfirmedMsg:
		if msg.ok {
			p.engine.Reset()
			p.state = p.engine.State()
			return p, func() tea.Msg { return statusMsg{text: "Timer reset"} }
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			p.engine.Start()
		case key.Matches(msg, keys.Pause):
			if p.engine.State().Running {
				p.engine.Pause()
			} else {
				p.engine.Start()
			}
		case key.Matches(msg, keys.Reset):
			return p, p.confirmReset()
		case key.Matches(msg, keys.Skip):
			if !p.coord.Skip() {
				return p, func() tea.Msg {
					return statusMsg{text: "Pause the timer before switching sessions", isError: true}
				}
			}
		case key.Matches(msg, keys.Remind):
			st := p.engine.State()
			return p, func() tea.Msg {
				p.dispatcher.SendReminder(st.Remaining, st.SessionType())
				return statusMsg{text: "Reminder sent"}
			}
		}
		p.state = p.engine.State()
	}
	return p, nil
}

// confirmReset asks through the dispatcher's dialog, which blocks, so it
// runs as a command.
func (p pomodoroModel) confirmReset() tea.Cmd {
	return func() tea.Msg {
		ok := p.dispatcher.Confirm(notify.Prompt{
			Title:        "Reset Timer",
			Message:      "Are you sure you want to reset the current session?",
			CancelLabel:  "Cancel",
			ConfirmLabel: "Reset",
		})
		return resetConfirmedMsg{ok: ok}
	}
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	st := p.state
	style := sessionStyle(st.Work)

	label := style.Render(sessionIcon(st.SessionType()) + "  " + sessionLabel(st.SessionType()))
	clock := style.Width(w - 6).Align(lipgloss.Center).Render(st.Formatted())

	status := warningStyle.Render("Paused")
	if st.Running {
		status = successStyle.Render("Running")
	}

	bar := p.progress.ViewAs(st.Progress())

	var controls string
	if st.Running {
		controls = mutedStyle.Render("space: pause  r: reset  m: remind")
	} else {
		next := "break"
		if !st.Work {
			next = "work"
		}
		controls = mutedStyle.Render(fmt.Sprintf("s: start  r: reset  n: switch to %s", next))
	}

	timerPanel := panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
		label,
		"",
		clock,
		status,
		"",
		bar,
		"",
		controls,
	))

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, p.renderToday(w))
}

func (p pomodoroModel) renderToday(w int) string {
	work := workStyle.Render(fmt.Sprintf("%d", p.today.WorkSessions))
	brk := breakStyle.Render(fmt.Sprintf("%d", p.today.BreakSessions))
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Today's Progress"),
		"",
		fmt.Sprintf("  %s work sessions   %s breaks", work, brk),
		mutedStyle.Render(fmt.Sprintf("  %d total sessions, %s focused", p.today.Sessions, formatMinutes(p.focused))),
	)
	return panelStyle.Width(w).Render(content)
}
