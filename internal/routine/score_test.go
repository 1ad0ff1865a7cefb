package routine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		percent int
		want    Feedback
	}{
		{100, FeedbackOutstanding},
		{99, FeedbackGreat},
		{80, FeedbackGreat},
		{79, FeedbackKeepGoing},
		{66, FeedbackKeepGoing},
		{65, FeedbackKeepGoing},
		{64, FeedbackTryAgain},
		{0, FeedbackTryAgain},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyScore(tt.percent), "percent %d", tt.percent)
	}
}

func TestFeedbackMessage(t *testing.T) {
	for _, f := range []Feedback{FeedbackOutstanding, FeedbackGreat, FeedbackKeepGoing, FeedbackTryAgain} {
		assert.NotEmpty(t, f.Message(), string(f))
	}
}

func TestComputeDayScore(t *testing.T) {
	_, err := ComputeDayScore(nil)
	assert.ErrorIs(t, err, ErrNoTasks)

	tasks := []Task{
		{Status: StatusDone},
		{Status: StatusMissed},
		{Status: StatusDone},
	}
	score, err := ComputeDayScore(tasks)
	require.NoError(t, err)
	assert.Equal(t, Score{Completed: 2, Total: 3, Percent: 66}, score)

	// floor, not round
	score, _ = ComputeDayScore([]Task{{Status: StatusDone}, {Status: StatusDone}, {Status: StatusDone}, {Status: StatusDone}, {Status: StatusDone}, {Status: StatusMissed}})
	assert.Equal(t, 83, score.Percent)
}

func TestComputeDayScoreFloor(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for done := 0; done <= total; done++ {
			tasks := make([]Task, total)
			for i := range tasks {
				tasks[i].Status = StatusMissed
				if i < done {
					tasks[i].Status = StatusDone
				}
			}
			score, err := ComputeDayScore(tasks)
			require.NoError(t, err)
			assert.Equal(t, (100*done)/total, score.Percent)
		}
	}
}

func TestFilterMonth(t *testing.T) {
	rows := []SummaryRow{{Day: "2026-10-02"}, {Day: "2026-09-30"}, {Day: "2026-10-19"}}
	got := FilterMonth(rows, "2026-10")
	require.Len(t, got, 2)
	assert.Equal(t, "2026-10-02", got[0].Day)
	assert.Equal(t, "2026-10-19", got[1].Day)
	assert.Len(t, FilterMonth(rows, ""), 3)
}

func TestWeekOf(t *testing.T) {
	wed := time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-19", DayKey(WeekOf(wed, time.Monday)))
	assert.Equal(t, "2026-10-18", DayKey(WeekOf(wed, time.Sunday)))

	sun := time.Date(2026, 10, 25, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-19", DayKey(WeekOf(sun, time.Monday)))
	assert.Equal(t, "2026-10-25", DayKey(WeekOf(sun, time.Sunday)))

	// crosses a month boundary
	thu := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-28", DayKey(WeekOf(thu, time.Monday)))
}

func TestFilterWeek(t *testing.T) {
	rows := []SummaryRow{{Day: "2026-10-25"}, {Day: "2026-10-18"}, {Day: "2026-10-19"}, {Day: "2026-10-26"}}
	got := FilterWeek(rows, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, "2026-10-25", got[0].Day)
	assert.Equal(t, "2026-10-19", got[1].Day)
}

func TestDisplayStatus(t *testing.T) {
	now := testClock()
	tests := []struct {
		name string
		task Task
		day  string
		want DisplayLabel
	}{
		{"done", Task{Start: "06:00 AM", Status: StatusDone}, today, LabelDone},
		{"missed", Task{Start: "06:00 AM", Status: StatusMissed}, today, LabelMissed},
		{"started", Task{Start: "06:00 AM", Status: StatusPending}, today, LabelUpdateStatus},
		{"exactly now", Task{Start: "10:30 AM", Status: StatusPending}, today, LabelUpdateStatus},
		{"later today", Task{Start: "11:00 AM", Status: StatusPending}, today, LabelYetToStart},
		{"tomorrow", Task{Start: "06:00 AM", Status: StatusPending}, "2026-10-20", LabelYetToStart},
		{"yesterday", Task{Start: "11:00 PM", Status: StatusPending}, "2026-10-18", LabelUpdateStatus},
		{"bad time", Task{Start: "??", Status: StatusPending}, today, DisplayLabel(StatusPending)},
		{"bad date", Task{Start: "06:00 AM", Status: StatusPending}, "not-a-date", DisplayLabel(StatusPending)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayStatus(tt.task, tt.day, now))
		})
	}
}

func TestIsFuture(t *testing.T) {
	now := testClock()

	future, err := IsFuture(Task{Start: "11:00 AM"}, today, now)
	require.NoError(t, err)
	assert.True(t, future)

	future, err = IsFuture(Task{Start: "09:00 AM"}, today, now)
	require.NoError(t, err)
	assert.False(t, future)

	future, err = IsFuture(Task{Start: "garbage"}, "2026-10-21", now)
	require.NoError(t, err)
	assert.True(t, future, "date comparison still applies")

	future, err = IsFuture(Task{Start: "garbage"}, today, now)
	require.NoError(t, err)
	assert.False(t, future)

	_, err = IsFuture(Task{Start: "09:00 AM"}, "nope", now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in         string
		hour, min  int
		shouldFail bool
	}{
		{"06:00 AM", 6, 0, false},
		{"6:05 pm", 18, 5, false},
		{"12:00 AM", 0, 0, false},
		{"12:15 PM", 12, 15, false},
		{"18:45", 18, 45, false},
		{"noon", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if tt.shouldFail {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.hour, h, tt.in)
		assert.Equal(t, tt.min, m, tt.in)
	}
}

func TestComposeClock(t *testing.T) {
	s, err := ComposeClock(6, 5, "am")
	require.NoError(t, err)
	assert.Equal(t, "06:05 AM", s)

	_, err = ComposeClock(13, 0, "PM")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ComposeClock(1, 0, "XM")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "06:00 PM", FormatClock(18, 0))
	assert.Equal(t, "12:30 AM", FormatClock(0, 30))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2026-10-19", DayKey(time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" DONE ")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, s)
	_, err = ParseStatus("finished")
	assert.ErrorIs(t, err, ErrValidation)
}
