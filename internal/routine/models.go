package routine

import (
	"errors"
	"fmt"
	"strings"
)

// DateLayout is the key format of a day.
const DateLayout = "2006-01-02"

var (
	ErrValidation           = errors.New("validation failed")
	ErrIndex                = errors.New("task index out of range")
	ErrFutureTask           = errors.New("task has not started yet")
	ErrIncompleteEvaluation = errors.New("mark all tasks as Done or Missed before checking your day")
	ErrNoTasks              = errors.New("no tasks for this day")
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusDone    Status = "Done"
	StatusMissed  Status = "Missed"
)

// Final reports whether the status counts toward scoring.
func (s Status) Final() bool {
	return s == StatusDone || s == StatusMissed
}

func (s Status) Valid() bool {
	return s == StatusPending || s.Final()
}

// ParseStatus accepts the status names case-insensitively.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "pending":
		return StatusPending, nil
	case "done":
		return StatusDone, nil
	case "missed":
		return StatusMissed, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, v)
}

type Task struct {
	ID          string
	Start       string // "06:00 AM"
	End         string
	Description string
	Status      Status
}

// DisplayLabel is the derived status shown to the user. It is never stored.
type DisplayLabel string

const (
	LabelYetToStart   DisplayLabel = "Yet to start"
	LabelUpdateStatus DisplayLabel = "Update the status"
	LabelDone         DisplayLabel = DisplayLabel(StatusDone)
	LabelMissed       DisplayLabel = DisplayLabel(StatusMissed)
)

type Score struct {
	Completed int
	Total     int
	Percent   int
}

type Evaluation struct {
	Day      string
	Score    Score
	Feedback Feedback
}

// SummaryRow is one line of the cross-day progress summary.
type SummaryRow struct {
	Day       string
	Total     int
	Completed int
	Percent   int
	Feedback  Feedback
}

// DaySnapshot is a copy of one day used for persistence and export.
type DaySnapshot struct {
	Day       string
	Tasks     []Task
	Evaluated bool
}
