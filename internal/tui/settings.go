package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/pomodoro"
	"github.com/sadopc/pomo/internal/store"
)

type settingsModel struct {
	store  *store.Store
	coord  *pomodoro.Coordinator
	width  int
	height int

	settings   store.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMinutes  *string
	breakMinutes *string
	sound        *bool
	vibration    *bool
}

func newSettingsModel(d Deps) settingsModel {
	work, brk := "", ""
	sound, vibration := true, true
	return settingsModel{
		store:        d.Store,
		coord:        d.Coordinator,
		settings:     store.DefaultSettings(),
		workMinutes:  &work,
		breakMinutes: &brk,
		sound:        &sound,
		vibration:    &vibration,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings store.Settings
}

type settingsSavedMsg struct {
	settings  store.Settings
	persisted bool
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: s.store.GetSettings()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case settingsSavedMsg:
		s.settings = msg.settings
		if !msg.persisted {
			return s, func() tea.Msg {
				return statusMsg{text: "Settings applied but could not be saved", isError: true}
			}
		}
		return s, func() tea.Msg { return statusMsg{text: "Settings saved"} }

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.workMinutes = strconv.Itoa(s.settings.WorkDuration)
	*s.breakMinutes = strconv.Itoa(s.settings.BreakDuration)
	*s.sound = s.settings.SoundEnabled
	*s.vibration = s.settings.VibrationEnabled

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work Session (minutes)").
				Value(s.workMinutes).
				Validate(minutesInRange(1, 60)),
			huh.NewInput().Title("Break Duration (minutes)").
				Value(s.breakMinutes).
				Validate(minutesInRange(1, 30)),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewConfirm().Title("Sound Notifications").
				Affirmative("On").Negative("Off").
				Value(s.sound),
			huh.NewConfirm().Title("Vibration").
				Affirmative("On").Negative("Off").
				Value(s.vibration),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		return s, s.save()
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	}

	return s, cmd
}

// save applies the form values through the coordinator so the engine picks
// up the new durations even when persisting fails.
func (s settingsModel) save() tea.Cmd {
	settings, err := s.formSettings()
	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: err.Error(), isError: true}
		}
	}
	return func() tea.Msg {
		ok := s.coord.ApplySettings(settings)
		return settingsSavedMsg{settings: settings, persisted: ok}
	}
}

func (s settingsModel) formSettings() (store.Settings, error) {
	work, err := strconv.Atoi(*s.workMinutes)
	if err != nil {
		return store.Settings{}, fmt.Errorf("invalid work duration %q", *s.workMinutes)
	}
	brk, err := strconv.Atoi(*s.breakMinutes)
	if err != nil {
		return store.Settings{}, fmt.Errorf("invalid break duration %q", *s.breakMinutes)
	}
	return store.Settings{
		WorkDuration:     work,
		BreakDuration:    brk,
		SoundEnabled:     *s.sound,
		VibrationEnabled: *s.vibration,
	}, nil
}

func minutesInRange(lo, hi int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("enter a whole number of minutes")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{
		title,
		"",
		settingRow("Work session", fmt.Sprintf("%d min", s.settings.WorkDuration)),
		settingRow("Break", fmt.Sprintf("%d min", s.settings.BreakDuration)),
		settingRow("Sound", onOff(s.settings.SoundEnabled)),
		settingRow("Vibration", onOff(s.settings.VibrationEnabled)),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(label), highlightStyle.Render(value))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
