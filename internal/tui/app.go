package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/sadopc/pomo/internal/export"
	"github.com/sadopc/pomo/internal/notify"
	"github.com/sadopc/pomo/internal/pomodoro"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// Deps are the components the UI drives.
type Deps struct {
	Engine      *timer.Engine
	Coordinator *pomodoro.Coordinator
	Dispatcher  *notify.Dispatcher
	Confirmer   *Confirmer
	Store       *store.Store
	Log         *log.Logger
	// ExportDir is where exports are written. Defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	confirmer *Confirmer
	bridge    *engineBridge
	log       *log.Logger
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dialog       dialogModel
	dialogActive bool

	pomodoro pomodoroModel
	history  historyModel
	stats    statsModel
	settings settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	if d.Log == nil {
		d.Log = log.New(io.Discard)
	}
	if d.ExportDir == "" {
		d.ExportDir, _ = os.UserHomeDir()
	}

	return App{
		store:      d.Store,
		confirmer:  d.Confirmer,
		bridge:     newEngineBridge(d.Engine, d.Coordinator),
		log:        d.Log,
		exportDir:  d.ExportDir,
		activeView: viewTimer,
		pomodoro:   newPomodoroModel(d),
		history:    newHistoryModel(d),
		stats:      newStatsModel(d),
		settings:   newSettingsModel(d),
		help:       h,
	}
}

// Close detaches the UI from the engine.
func (a App) Close() {
	a.bridge.close()
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.bridge.wait(),
		a.pomodoro.refresh(),
		a.settings.refresh(),
	}
	if a.confirmer != nil {
		cmds = append(cmds, a.confirmer.wait())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.pomodoro.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case engineEventMsg:
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		return a, tea.Batch(cmd, a.bridge.wait())

	case sessionSavedMsg:
		if !msg.ok {
			a.status, a.isErr = "Session could not be saved", true
		}
		var hcmd, scmd tea.Cmd
		a.history, hcmd = a.history.update(msg)
		a.stats, scmd = a.stats.update(msg)
		return a, tea.Batch(hcmd, scmd, a.pomodoro.refresh(), a.bridge.wait())

	case confirmRequestMsg:
		var cmd tea.Cmd
		a.dialog, cmd = newDialogModel(confirmRequest(msg))
		a.dialogActive = true
		a.exportPicking = false
		return a, cmd

	case todayDataMsg, resetConfirmedMsg:
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		return a, cmd

	case historyDataMsg, clearConfirmedMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		if _, ok := msg.(clearConfirmedMsg); ok {
			return a, tea.Batch(cmd, a.stats.refresh(), a.pomodoro.refresh())
		}
		return a, cmd

	case statsDataMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd

	case settingsDataMsg, settingsSavedMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		if a.dialogActive {
			return a.updateDialog(msg)
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimer)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewHistory)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewStats)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}
	}

	if a.dialogActive {
		return a.updateDialog(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		done bool
	)
	a.dialog, cmd, done = a.dialog.update(msg)
	if done {
		a.dialogActive = false
		a.dialog = dialogModel{}
		if a.confirmer == nil {
			return a, nil
		}
		return a, a.confirmer.wait()
	}
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.pomodoro.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.pomodoro.view()
	case viewHistory:
		content = a.history.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.dialogActive:
		content = a.dialog.view(a.width)
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("🍅 pomo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Countdown indicator when another tab is showing
	timerInfo := ""
	if st := a.pomodoro.state; a.activeView != viewTimer && st.Running {
		timerInfo = sessionStyle(st.Work).Render(" ● " + st.Formatted())
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Sessions")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions := a.store.GetSessions()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(a.exportDir, fmt.Sprintf("pomo-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, path); err != nil {
				a.log.Error("export", "format", "csv", "err", err)
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(a.exportDir, fmt.Sprintf("pomo-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, path); err != nil {
				a.log.Error("export", "format", "json", "err", err)
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		a.log.Info("exported sessions", "path", path, "count", len(sessions))
		return exportDoneMsg{path: path}
	}
}
