package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errInvalidSettings = errors.New("settings durations must be positive")

// SaveSettings overwrites the stored settings record.
func (s *Store) SaveSettings(settings Settings) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.available() {
		s.log.Warn("save settings", "err", errUnavailable)
		return false
	}

	data, err := json.Marshal(settings)
	if err != nil {
		s.log.Error("save settings", "err", fmt.Errorf("marshal settings: %w", err))
		return false
	}
	if err := s.kv.Set(SettingsKey, string(data)); err != nil {
		s.log.Error("save settings", "err", err)
		return false
	}
	return true
}

// GetSettings returns the stored settings, or DefaultSettings when the record
// is missing, unreadable or holds non-positive durations.
func (s *Store) GetSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := DefaultSettings()
	if !s.available() {
		return defaults
	}

	raw, ok, err := s.kv.Get(SettingsKey)
	if err != nil {
		s.log.Error("load settings", "err", err)
		return defaults
	}
	if !ok || raw == "" {
		return defaults
	}

	settings := defaults
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.log.Error("load settings", "err", fmt.Errorf("parse settings: %w", err))
		return defaults
	}
	if settings.WorkDuration <= 0 || settings.BreakDuration <= 0 {
		s.log.Warn("load settings", "err", errInvalidSettings)
		return defaults
	}
	return settings
}
