package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/notify"
)

type confirmRequest struct {
	prompt notify.Prompt
	reply  chan bool
}

// Confirmer is the in-app dialog used by the notification dispatcher.
// Confirm blocks the calling goroutine until the user answers; there is no
// timeout.
type Confirmer struct {
	requests chan confirmRequest
}

func NewConfirmer() *Confirmer {
	return &Confirmer{requests: make(chan confirmRequest)}
}

func (c *Confirmer) Confirm(p notify.Prompt) (bool, error) {
	reply := make(chan bool, 1)
	c.requests <- confirmRequest{prompt: p, reply: reply}
	return <-reply, nil
}

// wait returns a command delivering the next dialog request. Requests
// queue on the unbuffered channel while a dialog is open.
func (c *Confirmer) wait() tea.Cmd {
	return func() tea.Msg {
		return confirmRequestMsg(<-c.requests)
	}
}

// dialogModel renders one pending confirmation as a huh confirm field.
type dialogModel struct {
	request confirmRequest
	form    *huh.Form
	answer  *bool
}

func newDialogModel(req confirmRequest) (dialogModel, tea.Cmd) {
	answer := false
	confirmLabel := req.prompt.ConfirmLabel
	if confirmLabel == "" {
		confirmLabel = "Yes"
	}
	cancelLabel := req.prompt.CancelLabel
	if cancelLabel == "" {
		cancelLabel = "No"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(req.prompt.Title).
				Description(req.prompt.Message).
				Affirmative(confirmLabel).
				Negative(cancelLabel).
				Value(&answer),
		),
	).WithShowHelp(true)

	return dialogModel{request: req, form: form, answer: &answer}, form.Init()
}

// update feeds msg to the form. done reports that the dialog has been
// answered and the reply sent.
func (d dialogModel) update(msg tea.Msg) (dialogModel, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.respond(false)
		return d, nil, true
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		d.respond(*d.answer)
		return d, nil, true
	case huh.StateAborted:
		d.respond(false)
		return d, nil, true
	}
	return d, cmd, false
}

func (d dialogModel) respond(ok bool) {
	d.request.reply <- ok
}

func (d dialogModel) view(width int) string {
	w := width - 4
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, d.form.View(), "", mutedStyle.Render("  esc: "+cancelOf(d.request.prompt))),
	)
}

func cancelOf(p notify.Prompt) string {
	if p.CancelLabel == "" {
		return "cancel"
	}
	return p.CancelLabel
}
