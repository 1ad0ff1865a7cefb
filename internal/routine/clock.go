package routine

import (
	"fmt"
	"strings"
	"time"
)

// ClockLayout is the stored form of a time of day.
const ClockLayout = "03:04 PM"

var clockLayouts = []string{ClockLayout, "3:04 PM", "03:04PM", "3:04PM", "15:04"}

// ParseClock parses a time of day such as "06:30 AM", "6:30pm" or "18:30".
// The result carries only hour and minute.
func ParseClock(v string) (hour, minute int, err error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	for _, layout := range clockLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("parse time of day %q", v)
}

// FormatClock renders a 24h hour and minute as "03:04 PM".
func FormatClock(hour, minute int) string {
	return time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC).Format(ClockLayout)
}

// ComposeClock joins a 12h hour, minute and AM/PM marker the way the add form does.
func ComposeClock(hour12, minute int, meridiem string) (string, error) {
	if hour12 < 1 || hour12 > 12 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: time %d:%02d out of range", ErrValidation, hour12, minute)
	}
	m := strings.ToUpper(strings.TrimSpace(meridiem))
	if m != "AM" && m != "PM" {
		return "", fmt.Errorf("%w: meridiem %q must be AM or PM", ErrValidation, meridiem)
	}
	return fmt.Sprintf("%02d:%02d %s", hour12, minute, m), nil
}

func normalizeClock(v string) string {
	h, m, err := ParseClock(v)
	if err != nil {
		return strings.TrimSpace(v)
	}
	return FormatClock(h, m)
}

// ParseDay parses an ISO date key in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(day), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, day)
	}
	return t, nil
}

// DayKey formats t as a day key.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// StartTime returns the task's start on the given day, in loc.
func StartTime(t Task, day string, loc *time.Location) (time.Time, error) {
	d, err := ParseDay(day, loc)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := ParseClock(t.Start)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc), nil
}

func afterToday(day string, now time.Time) (bool, error) {
	d, err := ParseDay(day, now.Location())
	if err != nil {
		return false, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.After(today), nil
}

// IsFuture reports whether the task has not started yet: its day is after
// today, or now is before its start time. An unparseable start time leaves
// only the date comparison.
func IsFuture(t Task, day string, now time.Time) (bool, error) {
	later, err := afterToday(day, now)
	if err != nil {
		return false, err
	}
	if later {
		return true, nil
	}
	start, err := StartTime(t, day, now.Location())
	if err != nil {
		return false, nil
	}
	return now.Before(start), nil
}

// DisplayStatus derives the label shown for a task. Finalized tasks show
// their status; pending ones show whether they are still ahead or need an
// update. Malformed dates or times fall back to the raw status.
func DisplayStatus(t Task, day string, now time.Time) DisplayLabel {
	if t.Status.Final() {
		return DisplayLabel(t.Status)
	}
	start, err := StartTime(t, day, now.Location())
	if err != nil {
		return DisplayLabel(t.Status)
	}
	later, err := afterToday(day, now)
	if err != nil {
		return DisplayLabel(t.Status)
	}
	if later || now.Before(start) {
		return LabelYetToStart
	}
	return LabelUpdateStatus
}
