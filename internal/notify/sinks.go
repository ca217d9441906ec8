package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

// ErrUnsupported reports that a capability is not available here.
var ErrUnsupported = errors.New("capability unsupported")

// Message is a user-facing notification.
type Message struct {
	Title string
	Body  string
	Sound bool
}

// Intensity of a feedback pulse.
type Intensity int

const (
	Light Intensity = iota
	Medium
	Heavy
)

func (i Intensity) String() string {
	switch i {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	default:
		return "medium"
	}
}

// Prompt is a two-choice confirmation. Confirm returns true when the user
// picks ConfirmLabel.
type Prompt struct {
	Title        string
	Message      string
	CancelLabel  string
	ConfirmLabel string
}

// Notifier shows a notification.
type Notifier interface {
	Notify(msg Message) error
}

// Haptics produces a tactile (or closest available) feedback pulse.
type Haptics interface {
	Pulse(intensity Intensity) error
}

// Confirmer asks the user to choose between two options. It blocks until
// the user answers.
type Confirmer interface {
	Confirm(p Prompt) (bool, error)
}

// Notifiers fans a message out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) Notify(msg Message) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.Notify(msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bell rings the terminal bell when the message asks for sound.
type Bell struct {
	W io.Writer
}

func (b Bell) Notify(msg Message) error {
	if !msg.Sound {
		return nil
	}
	if b.W == nil {
		return ErrUnsupported
	}
	_, err := io.WriteString(b.W, "\a")
	return err
}

// Command runs an external notification program, e.g. notify-send, with the
// title and body appended to Args.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

func (c Command) Notify(msg Message) error {
	if c.Name == "" {
		return ErrUnsupported
	}
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return fmt.Errorf("notify command %q: %w", c.Name, ErrUnsupported)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(append([]string{}, c.Args...), msg.Title, msg.Body)
	if err := exec.CommandContext(ctx, path, args...).Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("notify command timed out after %s", timeout)
		}
		return fmt.Errorf("notify command: %w", err)
	}
	return nil
}

// LogNotifier records notifications in the log.
type LogNotifier struct {
	Log *log.Logger
}

func (l LogNotifier) Notify(msg Message) error {
	if l.Log == nil {
		return ErrUnsupported
	}
	l.Log.Info("notification", "title", msg.Title, "body", msg.Body)
	return nil
}

// BellHaptics stands in for vibration on a terminal by ringing the bell in
// the same rhythm a vibration pattern would use.
type BellHaptics struct {
	W     io.Writer
	Sleep func(time.Duration)
}

// Vibration patterns in milliseconds: on, off, on, ...
var patterns = map[Intensity][]int{
	Light:  {100},
	Medium: {150},
	Heavy:  {200, 100, 200},
}

func (h BellHaptics) Pulse(intensity Intensity) error {
	if h.W == nil {
		return ErrUnsupported
	}
	sleep := h.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	pattern, ok := patterns[intensity]
	if !ok {
		pattern = patterns[Medium]
	}
	for i, ms := range pattern {
		if i%2 == 0 {
			if _, err := io.WriteString(h.W, "\a"); err != nil {
				return err
			}
		}
		sleep(time.Duration(ms) * time.Millisecond)
	}
	return nil
}

// NoHaptics is used where no feedback device exists.
type NoHaptics struct{}

func (NoHaptics) Pulse(Intensity) error { return ErrUnsupported }

// Decline answers every prompt with the cancel option. It is the confirmer
// for environments that cannot show a dialog.
type Decline struct{}

func (Decline) Confirm(Prompt) (bool, error) { return false, nil }
