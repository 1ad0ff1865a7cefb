package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/routine/internal/routine"
)

const (
	SettingDefaultStart = "default_start"
	SettingDefaultEnd   = "default_end"
	SettingWeekStart    = "week_start"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// SettingOr returns the stored value, or fallback when the key is unset or
// cannot be read.
func (s *Store) SettingOr(key, fallback string) string {
	v, err := s.GetSetting(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// SetDefaultTimes stores the prefilled start and end of the add form. Both
// must be readable times of day; they are saved in the canonical layout.
func (s *Store) SetDefaultTimes(start, end string) error {
	sh, sm, err := routine.ParseClock(start)
	if err != nil {
		return fmt.Errorf("%w: default start: %v", routine.ErrValidation, err)
	}
	eh, em, err := routine.ParseClock(end)
	if err != nil {
		return fmt.Errorf("%w: default end: %v", routine.ErrValidation, err)
	}
	if err := s.SetSetting(SettingDefaultStart, routine.FormatClock(sh, sm)); err != nil {
		return err
	}
	return s.SetSetting(SettingDefaultEnd, routine.FormatClock(eh, em))
}

// DefaultTimes returns the add form defaults.
func (s *Store) DefaultTimes() (start, end string) {
	return s.SettingOr(SettingDefaultStart, "06:00 AM"), s.SettingOr(SettingDefaultEnd, "07:00 AM")
}

// SetWeekStart accepts "monday" or "sunday".
func (s *Store) SetWeekStart(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	if v != "monday" && v != "sunday" {
		return fmt.Errorf("%w: week start %q", routine.ErrValidation, v)
	}
	return s.SetSetting(SettingWeekStart, v)
}

// WeekStart is the first day of a week for the weekly summary.
func (s *Store) WeekStart() time.Weekday {
	if s.SettingOr(SettingWeekStart, "monday") == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
