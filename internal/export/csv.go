package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// ToCSV writes sessions, one row each, to path.
func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"ID", "Type", "Completed", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			string(s.Type),
			s.CompletedAt.Local().Format(time.RFC3339),
			strconv.Itoa(s.Duration),
			timer.FormatTime(s.Duration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
