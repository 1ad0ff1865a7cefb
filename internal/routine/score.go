package routine

import (
	"strings"
	"time"
)

type Feedback string

const (
	FeedbackOutstanding Feedback = "Outstanding"
	FeedbackGreat       Feedback = "Great"
	FeedbackKeepGoing   Feedback = "Keep going"
	FeedbackTryAgain    Feedback = "Try again"
)

var feedbackMessages = map[Feedback]string{
	FeedbackOutstanding: "Outstanding! You completed everything, keep shining!",
	FeedbackGreat:       "Great job! You're staying consistent.",
	FeedbackKeepGoing:   "Keep going! Every bit of effort counts.",
	FeedbackTryAgain:    "Let's try again tomorrow, small steps lead to big wins!",
}

// Message is the encouragement shown next to an evaluated day.
func (f Feedback) Message() string {
	return feedbackMessages[f]
}

// ClassifyScore maps a percentage to feedback. First match wins.
func ClassifyScore(percent int) Feedback {
	switch {
	case percent == 100:
		return FeedbackOutstanding
	case percent >= 80:
		return FeedbackGreat
	case percent >= 65:
		return FeedbackKeepGoing
	default:
		return FeedbackTryAgain
	}
}

// ComputeDayScore counts Done tasks. The percentage is floored.
func ComputeDayScore(tasks []Task) (Score, error) {
	if len(tasks) == 0 {
		return Score{}, ErrNoTasks
	}
	done := 0
	for _, t := range tasks {
		if t.Status == StatusDone {
			done++
		}
	}
	return Score{
		Completed: done,
		Total:     len(tasks),
		Percent:   done * 100 / len(tasks),
	}, nil
}

// AllFinal reports whether every task is Done or Missed.
func AllFinal(tasks []Task) bool {
	for _, t := range tasks {
		if !t.Status.Final() {
			return false
		}
	}
	return true
}

// FilterMonth keeps the rows whose day falls in month ("2006-01"),
// preserving order. An empty month keeps everything.
func FilterMonth(rows []SummaryRow, month string) []SummaryRow {
	if month == "" {
		return rows
	}
	prefix := month + "-"
	out := make([]SummaryRow, 0, len(rows))
	for _, r := range rows {
		if strings.HasPrefix(r.Day, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// WeekOf returns the first day of the week holding day, for weeks that
// begin on start.
func WeekOf(day time.Time, start time.Weekday) time.Time {
	offset := (int(day.Weekday()) - int(start) + 7) % 7
	return time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())
}

// FilterWeek keeps the rows of the seven days starting at first, preserving
// order.
func FilterWeek(rows []SummaryRow, first time.Time) []SummaryRow {
	from, to := DayKey(first), DayKey(first.AddDate(0, 0, 6))
	out := make([]SummaryRow, 0, len(rows))
	for _, r := range rows {
		if r.Day >= from && r.Day <= to {
			out = append(out, r)
		}
	}
	return out
}
