package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/routine/internal/routine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTasks() []routine.Task {
	return []routine.Task{
		{ID: "a", Start: "06:00 AM", End: "07:00 AM", Description: "run", Status: routine.StatusDone},
		{ID: "b", Start: "07:00 AM", End: "08:00 AM", Description: "read", Status: routine.StatusMissed},
		{ID: "c", Start: "09:00 AM", End: "10:00 AM", Description: "write", Status: routine.StatusPending},
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/routine.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDay("2026-10-19", sampleTasks(), false); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	tasks, err := s2.ListTasks("2026-10-19")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks after reopen, got %d", len(tasks))
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Days and tasks
// ============================================================

func TestSaveAndListTasks(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveDay("2026-10-19", sampleTasks(), false); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ListTasks("2026-10-19")
	if err != nil {
		t.Fatal(err)
	}
	want := sampleTasks()
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Fatalf("task %d = %+v, want %+v", i, tasks[i], want[i])
		}
	}
}

func TestSaveDayReplacesTasks(t *testing.T) {
	s := newTestStore(t)
	s.SaveDay("2026-10-19", sampleTasks(), false)

	remaining := sampleTasks()[1:]
	if err := s.SaveDay("2026-10-19", remaining, false); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.ListTasks("2026-10-19")
	if len(tasks) != 2 || tasks[0].ID != "b" || tasks[1].ID != "c" {
		t.Fatalf("unexpected tasks after replace: %+v", tasks)
	}
}

func TestSaveEmptyDay(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveDay("2026-10-19", nil, false); err != nil {
		t.Fatal(err)
	}
	days, _ := s.ListDays()
	if len(days) != 1 {
		t.Fatalf("expected empty day to be recorded, got %d days", len(days))
	}
	tasks, _ := s.ListTasks("2026-10-19")
	if tasks != nil {
		t.Fatalf("expected nil slice, got %d items", len(tasks))
	}
}

func TestListDaysKeepsFirstReferenceOrder(t *testing.T) {
	s := newTestStore(t)
	s.SaveDay("2026-10-19", nil, false)
	s.SaveDay("2026-10-01", nil, false)
	s.SaveDay("2026-10-19", sampleTasks(), true) // update must not move the day
	s.SaveDay("2026-10-25", nil, false)

	days, err := s.ListDays()
	if err != nil {
		t.Fatal(err)
	}
	got := []string{days[0].Date, days[1].Date, days[2].Date}
	want := []string{"2026-10-19", "2026-10-01", "2026-10-25"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day order = %v, want %v", got, want)
		}
	}
	if !days[0].Evaluated {
		t.Fatal("evaluated flag should be stored")
	}
}

func TestDuplicateTaskIDRejected(t *testing.T) {
	s := newTestStore(t)
	tasks := sampleTasks()
	s.SaveDay("2026-10-19", tasks, false)

	err := s.SaveDay("2026-10-20", tasks[:1], false)
	if err == nil {
		t.Fatal("expected error when a task id is reused on another day")
	}
	// failed transaction leaves nothing behind
	days, _ := s.ListDays()
	if len(days) != 1 {
		t.Fatalf("expected rollback, got %d days", len(days))
	}
}

func TestLoadIntoTracker(t *testing.T) {
	s := newTestStore(t)
	s.SaveDay("2026-10-18", sampleTasks()[:2], true)
	s.SaveDay("2026-10-19", sampleTasks()[2:], false)

	tr := routine.NewTracker()
	if err := s.LoadInto(tr); err != nil {
		t.Fatal(err)
	}
	days := tr.Days()
	if len(days) != 2 || days[0] != "2026-10-18" || days[1] != "2026-10-19" {
		t.Fatalf("unexpected days: %v", days)
	}
	if !tr.Evaluated("2026-10-18") {
		t.Fatal("2026-10-18 should be evaluated")
	}
	rows := tr.Summary()
	if len(rows) != 2 || rows[0].Percent != 50 {
		t.Fatalf("unexpected summary: %+v", rows)
	}
}

func TestSyncDay(t *testing.T) {
	s := newTestStore(t)
	tr := routine.NewTracker()
	if _, err := tr.AddTask("2026-10-19", "06:00 AM", "07:00 AM", "stretch"); err != nil {
		t.Fatal(err)
	}
	if err := s.SyncDay(tr, "2026-10-19"); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.ListTasks("2026-10-19")
	if len(tasks) != 1 || tasks[0].Description != "stretch" || tasks[0].Status != routine.StatusPending {
		t.Fatalf("unexpected stored tasks: %+v", tasks)
	}
}

func TestSyncDayKeepsTrackerOrder(t *testing.T) {
	s := newTestStore(t)
	tr := routine.NewTracker()
	tr.Tasks("2026-10-19") // viewed first, saved last
	tr.AddTask("2026-10-20", "06:00 AM", "07:00 AM", "b")
	if err := s.SyncDay(tr, "2026-10-20"); err != nil {
		t.Fatal(err)
	}
	tr.AddTask("2026-10-19", "06:00 AM", "07:00 AM", "a")
	if err := s.SyncDay(tr, "2026-10-19"); err != nil {
		t.Fatal(err)
	}

	days, err := s.ListDays()
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 || days[0].Date != "2026-10-19" || days[1].Date != "2026-10-20" {
		t.Fatalf("stored order = %+v", days)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"default_start": "06:00 AM",
		"default_end":   "07:00 AM",
		"week_start":    "monday",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("default_start", "05:30 AM")
	val, _ := s.GetSetting("default_start")
	if val != "05:30 AM" {
		t.Fatalf("expected 05:30 AM, got %s", val)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetSettingNotFoundIsDetectable(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if got := s.SettingOr("nonexistent", "fallback"); got != "fallback" {
		t.Fatalf("SettingOr = %q, want fallback", got)
	}
}

func TestWeekStart(t *testing.T) {
	s := newTestStore(t)
	if got := s.WeekStart(); got != time.Monday {
		t.Fatalf("default week start = %s, want Monday", got)
	}
	if err := s.SetWeekStart("sunday"); err != nil {
		t.Fatal(err)
	}
	if got := s.WeekStart(); got != time.Sunday {
		t.Fatalf("week start = %s, want Sunday", got)
	}
}

func TestDefaultTimes(t *testing.T) {
	s := newTestStore(t)

	start, end := s.DefaultTimes()
	if start != "06:00 AM" || end != "07:00 AM" {
		t.Fatalf("unexpected defaults %q %q", start, end)
	}

	if err := s.SetDefaultTimes("5:30pm", "18:45"); err != nil {
		t.Fatal(err)
	}
	start, end = s.DefaultTimes()
	if start != "05:30 PM" || end != "06:45 PM" {
		t.Fatalf("expected normalized times, got %q %q", start, end)
	}

	if err := s.SetDefaultTimes("noon", "01:00 PM"); !errors.Is(err, routine.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	start, _ = s.DefaultTimes()
	if start != "05:30 PM" {
		t.Fatalf("failed update changed start to %q", start)
	}
}

func TestSetWeekStart(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetWeekStart("Sunday"); err != nil {
		t.Fatal(err)
	}
	if got := s.SettingOr(SettingWeekStart, ""); got != "sunday" {
		t.Fatalf("week_start = %q", got)
	}
	if err := s.SetWeekStart("friday"); err == nil {
		t.Fatal("expected error for friday")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 3 {
		t.Fatalf("expected at least 3 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

// ============================================================
// Foreign key constraints
// ============================================================

func TestForeignKeyTasksDay(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, date, position, start_time, end_time, description) VALUES ('x', '2030-01-01', 0, '', '', 'orphan')`,
	)
	if err == nil {
		t.Fatal("expected foreign key error for task without a day")
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	err := s.Close()
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
}
