package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/routine/internal/routine"
)

func testNow() time.Time {
	return time.Date(2026, 10, 19, 10, 30, 0, 0, time.Local)
}

// run executes one command the way a separate process would: a fresh app
// against the same config and database files in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	a := &app{now: testNow}
	defer a.close()

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--db", filepath.Join(dir, "routine.db"),
		"--log-level", "error",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

func TestAddAndListAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "add", "8:00 am", "9:00 am", "Morning", "run")
	assert.Contains(t, out, "Task added for 08:00 AM → 09:00 AM: Morning run (2026-10-19)")
	mustRun(t, dir, "add", "11:00 PM", "11:30 PM", "Read")

	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Morning run")
	assert.Contains(t, out, string(routine.LabelUpdateStatus))
	assert.Contains(t, out, string(routine.LabelYetToStart))
	assert.Contains(t, out, "Completed 0/2 Tasks")

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestAddRejectsBlankDescription(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "06:00 AM", "07:00 AM", "   ")
	require.ErrorIs(t, err, routine.ErrValidation)
}

func TestMarkAndEvaluate(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "06:00 AM", "07:00 AM", "Run")
	mustRun(t, dir, "add", "07:00 AM", "08:00 AM", "Read")

	out := mustRun(t, dir, "mark", "1", "done")
	assert.Contains(t, out, "Task #1 marked Done")
	mustRun(t, dir, "mark", "#2", "missed")

	out = mustRun(t, dir, "evaluate")
	assert.Contains(t, out, "Completed 1/2 Tasks, 50% success")
	assert.Contains(t, out, routine.FeedbackTryAgain.Message())

	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "Score 50%")
}

func TestMarkFutureTask(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "11:00 PM", "11:30 PM", "Read")

	_, err := run(t, dir, "mark", "1", "done")
	require.ErrorIs(t, err, routine.ErrFutureTask)
	assert.Contains(t, err.Error(), "hasn't started yet")

	_, err = run(t, dir, "add", "06:00 AM", "07:00 AM", "Run", "--date", "tomorrow")
	require.NoError(t, err)
	_, err = run(t, dir, "mark", "1", "done", "--date", "tomorrow")
	require.ErrorIs(t, err, routine.ErrFutureTask)
}

func TestMarkBadInput(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "06:00 AM", "07:00 AM", "Run")

	_, err := run(t, dir, "mark", "0", "done")
	require.ErrorIs(t, err, routine.ErrValidation)
	_, err = run(t, dir, "mark", "1", "maybe")
	require.ErrorIs(t, err, routine.ErrValidation)
	_, err = run(t, dir, "mark", "3", "done")
	require.ErrorIs(t, err, routine.ErrIndex)
}

func TestEvaluateIncomplete(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "06:00 AM", "07:00 AM", "Run")

	_, err := run(t, dir, "evaluate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please mark all tasks as Done or Missed")

	_, err = run(t, dir, "evaluate", "--date", "2026-10-01")
	require.ErrorIs(t, err, routine.ErrNoTasks)
}

func TestDeleteIgnoresStaleNumbers(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "06:00 AM", "07:00 AM", "A")
	mustRun(t, dir, "add", "07:00 AM", "08:00 AM", "B")

	out := mustRun(t, dir, "delete", "1", "9")
	assert.Contains(t, out, "Deleted 1 task(s)")

	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "B")
	assert.NotContains(t, out, " A ")
}

func scoreDay(t *testing.T, dir, day string, statuses ...string) {
	t.Helper()
	for i, st := range statuses {
		mustRun(t, dir, "add", "06:00 AM", "07:00 AM", "task", "--date", day)
		mustRun(t, dir, "mark", string(rune('1'+i)), st, "--date", day)
	}
	mustRun(t, dir, "evaluate", "--date", day)
}

func TestSummary(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "summary")
	assert.Contains(t, out, "No tracked data yet. Complete some days first!")

	scoreDay(t, dir, "2026-09-30", "done")
	scoreDay(t, dir, "2026-10-18", "done", "missed")

	out = mustRun(t, dir, "summary")
	assert.Contains(t, out, "2026-09-30")
	assert.Contains(t, out, "2026-10-18")
	assert.Contains(t, out, "Score (%)")

	out = mustRun(t, dir, "summary", "--month", "2026-10")
	assert.NotContains(t, out, "2026-09-30")
	assert.Contains(t, out, "Try again")

	_, err := run(t, dir, "summary", "--month", "October")
	require.ErrorIs(t, err, routine.ErrValidation)
}

func TestSummaryWeek(t *testing.T) {
	dir := t.TempDir()
	scoreDay(t, dir, "2026-10-18", "done")
	scoreDay(t, dir, "2026-10-19", "missed")

	out := mustRun(t, dir, "summary", "--week")
	assert.Contains(t, out, "2026-10-19")
	assert.NotContains(t, out, "2026-10-18")

	_, err := run(t, dir, "summary", "--week", "--month", "2026-10")
	require.Error(t, err)
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	scoreDay(t, dir, "2026-10-18", "done")

	out := mustRun(t, dir, "report", "--raw")
	assert.Contains(t, out, "# Routine report: All time")
	assert.Contains(t, out, "| 2026-10-18 | 1 | 1 | 100 | Outstanding |")
	assert.Contains(t, out, "Best day: **2026-10-18**")

	out = mustRun(t, dir, "report")
	assert.Contains(t, out, "2026-10-18")
}

func TestReportMarkdownEmpty(t *testing.T) {
	md := reportMarkdown(nil, "2026-10", testNow())
	assert.Contains(t, md, "# Routine report: October 2026")
	assert.Contains(t, md, "No tracked data yet")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "06:00 AM", "07:00 AM", "Run")
	mustRun(t, dir, "mark", "1", "done")
	mustRun(t, dir, "evaluate")

	for _, format := range []string{"csv", "json", "ics"} {
		path := filepath.Join(dir, "out."+format)
		out := mustRun(t, dir, "export", format, "--out", path)
		assert.Contains(t, out, "Exported to "+path)
		assert.FileExists(t, path)
	}

	body, err := os.ReadFile(filepath.Join(dir, "out.ics"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "SUMMARY:Run")

	_, err = run(t, dir, "export", "xml")
	require.Error(t, err)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	cal := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//routine//test//EN",
		"BEGIN:VEVENT",
		"UID:walk@test",
		"DTSTAMP:20261001T000000Z",
		"DTSTART:20261019T120000",
		"DTEND:20261019T123000",
		"SUMMARY:Walk",
		"RRULE:FREQ=DAILY;COUNT=3",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	path := filepath.Join(dir, "walk.ics")
	require.NoError(t, os.WriteFile(path, []byte(cal), 0o644))

	out := mustRun(t, dir, "import", path, "--from", "2026-10-19", "--days", "7")
	assert.Contains(t, out, "Imported 3 task(s) from 1 event(s), 0 skipped")

	out = mustRun(t, dir, "list", "--date", "2026-10-21")
	assert.Contains(t, out, "Walk")

	_, err := run(t, dir, "import", path, "--days", "0")
	require.Error(t, err)
}

func TestScorecardRejectsBadSchedule(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "scorecard", "--schedule", "every now and then")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestResolveDay(t *testing.T) {
	a := &app{now: testNow}

	tests := map[string]string{
		"":           "2026-10-19",
		"today":      "2026-10-19",
		"Tomorrow":   "2026-10-20",
		"yesterday":  "2026-10-18",
		"2026-01-05": "2026-01-05",
	}
	for in, want := range tests {
		got, err := a.resolveDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := a.resolveDay("next week")
	require.ErrorIs(t, err, routine.ErrValidation)
}

func TestParsePosition(t *testing.T) {
	idx, err := parsePosition("#3")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = parsePosition("zero")
	require.ErrorIs(t, err, routine.ErrValidation)
}
