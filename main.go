package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/pomo/internal/config"
	"github.com/sadopc/pomo/internal/logging"
	"github.com/sadopc/pomo/internal/notify"
	"github.com/sadopc/pomo/internal/pomodoro"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
	"github.com/sadopc/pomo/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default ~/.config/pomo/config.yaml)")
	initConfig := flag.Bool("init-config", false, "Write the effective configuration to the config path and exit")
	flag.Parse()

	if err := run(*configPath, *initConfig); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, initConfig bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if initConfig {
		path, err := config.Path(configPath)
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}

	logger, logCloser, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	s, err := store.New(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	engine := timer.New(store.DefaultSettings().WorkDuration, store.DefaultSettings().BreakDuration,
		timer.Options{TickInterval: cfg.TickInterval})

	notifiers := notify.Notifiers{notify.LogNotifier{Log: logger}}
	var haptics notify.Haptics = notify.NoHaptics{}
	if cfg.Bell {
		// Stdout belongs to the renderer.
		notifiers = append(notifiers, notify.Bell{W: os.Stderr})
		haptics = notify.BellHaptics{W: os.Stderr}
	}
	if len(cfg.NotifyCommand) > 0 {
		notifiers = append(notifiers, notify.Command{Name: cfg.NotifyCommand[0], Args: cfg.NotifyCommand[1:]})
	}

	confirmer := tui.NewConfirmer()
	dispatcher := notify.New(notify.Config{
		Notifier:  notifiers,
		Haptics:   haptics,
		Confirmer: confirmer,
		Settings:  s.GetSettings,
		Log:       logger,
	})

	coord := pomodoro.New(engine, s, dispatcher, logger)
	defer coord.Close()
	settings := coord.LoadSettings()
	logger.Info("starting", "db", cfg.DBPath, "work", settings.WorkDuration, "break", settings.BreakDuration)

	app := tui.NewApp(tui.Deps{
		Engine:      engine,
		Coordinator: coord,
		Dispatcher:  dispatcher,
		Confirmer:   confirmer,
		Store:       s,
		Log:         logger,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	logger.Info("exiting")
	return nil
}
