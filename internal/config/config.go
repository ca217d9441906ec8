package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sadopc/pomo/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "pomo"
	configFileName = "config.yaml"
)

// Config holds application options. Timer durations and notification
// preferences are user settings kept in the store, not here.
type Config struct {
	DBPath        string        `yaml:"db_path"`
	LogPath       string        `yaml:"log_path"`
	LogLevel      string        `yaml:"log_level"`
	NotifyCommand []string      `yaml:"notify_command"`
	Bell          bool          `yaml:"bell"`
	TickInterval  time.Duration `yaml:"tick_interval"`
}

// Default returns the configuration used when no file or env is present.
func Default() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DBPath:       dbPath,
		LogPath:      filepath.Join(dir, "pomo.log"),
		LogLevel:     "info",
		Bell:         true,
		TickInterval: time.Second,
	}, nil
}

// Dir returns ~/.config/pomo
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(cfg, appName), nil
}

// Path returns path, or the default config file location when path is empty.
func Path(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load builds the configuration from defaults, the YAML file at path (the
// default location when empty), a .env file in the working directory and
// POMO_* environment variables, later sources winning.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	path, err = Path(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.readFile(path); err != nil {
		return cfg, err
	}

	cfg.applyEnv()

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBPath = getEnv("POMO_DB_PATH", c.DBPath)
	c.LogPath = getEnv("POMO_LOG_PATH", c.LogPath)
	c.LogLevel = getEnv("POMO_LOG_LEVEL", c.LogLevel)
	c.Bell = getEnvBool("POMO_BELL", c.Bell)
	c.TickInterval = getEnvDuration("POMO_TICK_INTERVAL", c.TickInterval)
	if v := getEnv("POMO_NOTIFY_COMMAND", ""); v != "" {
		c.NotifyCommand = strings.Fields(v)
	}
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
