package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/store"
)

var statsRanges = []int{7, 14, 30}

type statsModel struct {
	store  *store.Store
	width  int
	height int

	rangeIdx int
	stats    store.Stats
	days     []store.DayCount

	chart barchart.Model
}

func newStatsModel(d Deps) statsModel {
	return statsModel{
		store: d.Store,
		chart: barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

type statsDataMsg struct {
	stats store.Stats
	days  []store.DayCount
}

func (s statsModel) refresh() tea.Cmd {
	n := statsRanges[s.rangeIdx]
	return func() tea.Msg {
		return statsDataMsg{
			stats: s.store.GetStats(),
			days:  s.store.GetDailyCounts(n),
		}
	}
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.stats = msg.stats
		s.days = msg.days
		s.buildChart()
		return s, nil

	case sessionSavedMsg:
		return s, s.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if s.rangeIdx > 0 {
				s.rangeIdx--
				return s, s.refresh()
			}
		case key.Matches(msg, keys.Right):
			if s.rangeIdx < len(statsRanges)-1 {
				s.rangeIdx++
				return s, s.refresh()
			}
		}
	}
	return s, nil
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	workBar := lipgloss.NewStyle().Foreground(colorPrimary)
	breakBar := lipgloss.NewStyle().Foreground(colorSecondary)

	var bars []barchart.BarData
	for _, d := range s.days {
		label := d.Date.Format("Mon 02")
		if len(s.days) > 7 {
			label = d.Date.Format("02")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "Work", Value: float64(d.Work), Style: workBar},
				{Name: "Break", Value: float64(d.Breaks), Style: breakBar},
			},
		})
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	var tabs []string
	for i, n := range statsRanges {
		name := fmt.Sprintf("%dd", n)
		if i == s.rangeIdx {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Statistics"), "  "}, tabs...)...,
	)

	totals := s.renderTotals()

	legend := fmt.Sprintf("  %s Work  %s Break",
		workStyle.Render("█"), breakStyle.Render("█"))

	nav := mutedStyle.Render("  ←/→: range")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", totals, "", s.chart.View(), legend, "", nav,
		),
	)
}

func (s statsModel) renderTotals() string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %8s %8s %8s", "", "Work", "Break", "Total")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", 35)))
	for _, r := range []struct {
		name string
		c    store.Counts
	}{
		{"Today", s.stats.Today},
		{"All", s.stats.Total},
	} {
		rows = append(rows, fmt.Sprintf("  %-8s %8d %8d %8s", r.name, r.c.WorkSessions, r.c.BreakSessions,
			highlightStyle.Render(fmt.Sprintf("%d", r.c.Sessions))))
	}
	return strings.Join(rows, "\n")
}
