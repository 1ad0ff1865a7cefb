package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/routine/internal/routine"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPlanner viewState = iota
	viewSummary
	viewSettings
)

var viewNames = []string{"Planner", "Summary", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

var (
	hourOptions     = numberOptions(1, 12)
	minuteOptions   = numberOptions(0, 59)
	meridiemOptions = []string{"AM", "PM"}
)

func numberOptions(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("%02d", i))
	}
	return out
}

// splitClock breaks a stored time into the add form's hour, minute and
// AM/PM parts. Unreadable values give fallback's parts.
func splitClock(v, fallback string) (hour, minute, meridiem string) {
	h, m, err := routine.ParseClock(v)
	if err != nil {
		h, m, _ = routine.ParseClock(fallback)
	}
	meridiem = "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d", h12), fmt.Sprintf("%02d", m), meridiem
}

// joinClock is the inverse of splitClock.
func joinClock(hour, minute, meridiem string) (string, error) {
	h, err := strconv.Atoi(hour)
	if err != nil {
		return "", fmt.Errorf("%w: hour %q", routine.ErrValidation, hour)
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return "", fmt.Errorf("%w: minute %q", routine.ErrValidation, minute)
	}
	return routine.ComposeClock(h, m, meridiem)
}

func shiftDay(day string, n int) string {
	t, err := time.Parse(routine.DateLayout, day)
	if err != nil {
		return day
	}
	return routine.DayKey(t.AddDate(0, 0, n))
}

func shiftMonth(month string, n int) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.AddDate(0, n, 0).Format("2006-01")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
