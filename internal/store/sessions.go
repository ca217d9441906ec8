package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// MaxSessions is the number of most recent sessions kept in the log.
const MaxSessions = 100

// SaveSession assigns an id to sess, appends it to the log and drops the
// oldest entries beyond MaxSessions. It reports false, leaving the stored
// log untouched, when anything fails.
func (s *Store) SaveSession(sess Session) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.available() {
		s.log.Warn("save session", "err", errUnavailable)
		return sess, false
	}

	sessions := s.loadSessionsLocked()
	sess.ID = s.newID()
	sessions = append(sessions, sess)
	if len(sessions) > MaxSessions {
		sessions = sessions[len(sessions)-MaxSessions:]
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		s.log.Error("save session", "err", fmt.Errorf("marshal sessions: %w", err))
		return sess, false
	}
	if err := s.kv.Set(SessionsKey, string(data)); err != nil {
		s.log.Error("save session", "err", err)
		return sess, false
	}
	return sess, true
}

// GetSessions returns the stored log oldest first. Missing, unavailable or
// unparseable data yields an empty slice.
func (s *Store) GetSessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSessionsLocked()
}

func (s *Store) loadSessionsLocked() []Session {
	sessions := []Session{}
	if !s.available() {
		return sessions
	}

	raw, ok, err := s.kv.Get(SessionsKey)
	if err != nil {
		s.log.Error("load sessions", "err", err)
		return sessions
	}
	if !ok || raw == "" {
		return sessions
	}
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		s.log.Error("load sessions", "err", fmt.Errorf("parse sessions: %w", err))
		return []Session{}
	}
	return sessions
}

// GetTodaySessions returns sessions completed on the current local calendar day.
func (s *Store) GetTodaySessions() []Session {
	return filterSessions(s.GetSessions(), func(sess Session) bool {
		return sameDay(sess.CompletedAt, s.now())
	})
}

// GetSessionsSince returns sessions completed at or after t.
func (s *Store) GetSessionsSince(t time.Time) []Session {
	return filterSessions(s.GetSessions(), func(sess Session) bool {
		return !sess.CompletedAt.Before(t)
	})
}

func (s *Store) GetStats() Stats {
	now := s.now()
	var stats Stats
	for _, sess := range s.GetSessions() {
		stats.Total.add(sess.Type)
		if sameDay(sess.CompletedAt, now) {
			stats.Today.add(sess.Type)
		}
	}
	return stats
}

// GetDailyCounts returns one DayCount per local day for the given number of
// days ending today, oldest first.
func (s *Store) GetDailyCounts(days int) []DayCount {
	if days <= 0 {
		return nil
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	counts := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := range counts {
		d := today.AddDate(0, 0, i-days+1)
		counts[i].Date = d
		index[d.Format("2006-01-02")] = i
	}

	for _, sess := range s.GetSessions() {
		key := sess.CompletedAt.In(now.Location()).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue
		}
		switch sess.Type {
		case SessionWork:
			counts[i].Work++
		case SessionBreak:
			counts[i].Breaks++
		}
	}
	return counts
}

// ClearAll removes the session log and the settings record.
func (s *Store) ClearAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.available() {
		s.log.Warn("clear all", "err", errUnavailable)
		return false
	}
	if err := s.kv.Delete(SessionsKey, SettingsKey); err != nil {
		s.log.Error("clear all", "err", err)
		return false
	}
	return true
}

func (c *Counts) add(t SessionType) {
	c.Sessions++
	switch t {
	case SessionWork:
		c.WorkSessions++
	case SessionBreak:
		c.BreakSessions++
	}
}

func filterSessions(sessions []Session, keep func(Session) bool) []Session {
	out := []Session{}
	for _, sess := range sessions {
		if keep(sess) {
			out = append(out, sess)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
