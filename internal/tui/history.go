package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/notify"
	"github.com/sadopc/pomo/internal/pomodoro"
	"github.com/sadopc/pomo/internal/store"
)

type historyFilter int

const (
	filterToday historyFilter = iota
	filterWeek
	filterAll
)

var filterNames = []string{"Today", "Week", "All"}

type historyModel struct {
	store      *store.Store
	coord      *pomodoro.Coordinator
	dispatcher *notify.Dispatcher
	width      int
	height     int
	now        func() time.Time

	filter   historyFilter
	sessions []store.Session
	counts   store.Counts
	cursor   int
}

func newHistoryModel(d Deps) historyModel {
	return historyModel{
		store:      d.Store,
		coord:      d.Coordinator,
		dispatcher: d.Dispatcher,
		now:        time.Now,
	}
}

func (h *historyModel) setSize(w, height int) {
	h.width = w
	h.height = height
}

type historyDataMsg struct {
	filter   historyFilter
	sessions []store.Session
}

func (h historyModel) refresh() tea.Cmd {
	filter := h.filter
	return func() tea.Msg {
		return historyDataMsg{filter: filter, sessions: h.load(filter)}
	}
}

// load returns the sessions matching filter, newest first. The week filter
// is a rolling seven days.
func (h historyModel) load(filter historyFilter) []store.Session {
	var sessions []store.Session
	switch filter {
	case filterToday:
		sessions = h.store.GetTodaySessions()
	case filterWeek:
		sessions = h.store.GetSessionsSince(h.now().AddDate(0, 0, -7))
	default:
		sessions = h.store.GetSessions()
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CompletedAt.After(sessions[j].CompletedAt)
	})
	return sessions
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.filter != h.filter {
			return h, nil
		}
		h.sessions = msg.sessions
		h.counts = store.Counts{}
		for _, s := range msg.sessions {
			h.counts.Sessions++
			switch s.Type {
			case store.SessionWork:
				h.counts.WorkSessions++
			case store.SessionBreak:
				h.counts.BreakSessions++
			}
		}
		if h.cursor >= len(h.sessions) {
			h.cursor = max(0, len(h.sessions)-1)
		}
		return h, nil

	case sessionSavedMsg:
		return h, h.refresh()

	case clearConfirmedMsg:
		if !msg.ok {
			return h, nil
		}
		if !h.store.ClearAll() {
			return h, func() tea.Msg {
				return statusMsg{text: "Could not clear history", isError: true}
			}
		}
		// Clearing also drops saved settings; put the engine back on defaults.
		settings := h.coord.LoadSettings()
		return h, tea.Batch(h.refresh(), func() tea.Msg {
			return settingsDataMsg{settings: settings}
		}, func() tea.Msg {
			return statusMsg{text: "History cleared"}
		})

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if h.filter > filterToday {
				h.filter--
				h.cursor = 0
				return h, h.refresh()
			}
		case key.Matches(msg, keys.Right):
			if h.filter < filterAll {
				h.filter++
				h.cursor = 0
				return h, h.refresh()
			}
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.sessions)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Clear):
			return h, h.confirmClear()
		}
	}
	return h, nil
}

func (h historyModel) confirmClear() tea.Cmd {
	return func() tea.Msg {
		ok := h.dispatcher.Confirm(notify.Prompt{
			Title:        "Clear History",
			Message:      "Are you sure you want to clear all session history? This cannot be undone.",
			CancelLabel:  "Cancel",
			ConfirmLabel: "Clear",
		})
		return clearConfirmedMsg{ok: ok}
	}
}

func (h historyModel) view() string {
	w := h.width - 4

	var tabs []string
	for i, name := range filterNames {
		if historyFilter(i) == h.filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Session History"), "  "}, tabs...)...,
	)

	summary := fmt.Sprintf("  %s work  %s break  %s total",
		workStyle.Render(fmt.Sprintf("%d", h.counts.WorkSessions)),
		breakStyle.Render(fmt.Sprintf("%d", h.counts.BreakSessions)),
		titleStyle.Render(fmt.Sprintf("%d", h.counts.Sessions)),
	)

	var rows []string
	rows = append(rows, header, "", summary, "")

	if len(h.sessions) == 0 {
		rows = append(rows, mutedStyle.Render("  No sessions yet. Complete a session to see it here."))
	} else {
		rows = append(rows, h.renderList(w)...)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: filter  ↑/↓: scroll  c: clear all"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (h historyModel) renderList(w int) []string {
	visible := h.height - 12
	if visible < 3 {
		visible = 3
	}
	start := 0
	if h.cursor >= visible {
		start = h.cursor - visible + 1
	}
	end := min(len(h.sessions), start+visible)

	now := h.now()
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-16s %-12s %s", "", "Session", "Length", "Completed")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 52))))
	for i := start; i < end; i++ {
		s := h.sessions[i]
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-16s %-12s %s",
			cursor, sessionIcon(s.Type), sessionLabel(s.Type), formatMinutes(s.Duration), formatCompleted(s.CompletedAt, now),
		)))
	}
	return rows
}
