package store

import (
	"fmt"
	"time"

	"github.com/sadopc/routine/internal/routine"
)

// SaveDay replaces the stored content of one day. A new day is appended
// after all known days so first-reference order survives a reload.
func (s *Store) SaveDay(date string, tasks []routine.Task, evaluated bool) error {
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save day: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO days (date, seq, evaluated, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM days), ?, ?)
		ON CONFLICT(date) DO UPDATE SET evaluated = excluded.evaluated, updated_at = excluded.updated_at`,
		date, boolInt(evaluated), now,
	)
	if err != nil {
		return fmt.Errorf("upsert day %s: %w", date, err)
	}

	if _, err := tx.Exec(`DELETE FROM tasks WHERE date = ?`, date); err != nil {
		return fmt.Errorf("clear tasks of %s: %w", date, err)
	}

	for i, t := range tasks {
		_, err := tx.Exec(
			`INSERT INTO tasks (id, date, position, start_time, end_time, description, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, date, i, t.Start, t.End, t.Description, string(t.Status), now,
		)
		if err != nil {
			return fmt.Errorf("insert task %d of %s: %w", i, date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day %s: %w", date, err)
	}
	return nil
}

func (s *Store) ListDays() ([]DayRecord, error) {
	rows, err := s.db.Query(`SELECT date, seq, evaluated, updated_at FROM days ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []DayRecord
	for rows.Next() {
		var d DayRecord
		var evaluated int
		var updatedAt string
		if err := rows.Scan(&d.Date, &d.Seq, &evaluated, &updatedAt); err != nil {
			return nil, err
		}
		d.Evaluated = evaluated == 1
		d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *Store) ListTasks(date string) ([]routine.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, start_time, end_time, description, status FROM tasks WHERE date = ? ORDER BY position`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks of %s: %w", date, err)
	}
	defer rows.Close()

	var tasks []routine.Task
	for rows.Next() {
		var t routine.Task
		var status string
		if err := rows.Scan(&t.ID, &t.Start, &t.End, &t.Description, &status); err != nil {
			return nil, err
		}
		t.Status = routine.Status(status)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// LoadInto restores every stored day into tr, in stored order.
func (s *Store) LoadInto(tr *routine.Tracker) error {
	days, err := s.ListDays()
	if err != nil {
		return err
	}
	for _, d := range days {
		tasks, err := s.ListTasks(d.Date)
		if err != nil {
			return err
		}
		tr.Restore(d.Date, tasks, d.Evaluated)
	}
	return nil
}

// SyncDay writes the tracker's current view of one day, then renumbers the
// stored days to the tracker's first-reference order. A day viewed before it
// was first saved keeps its place that way.
func (s *Store) SyncDay(tr *routine.Tracker, date string) error {
	if err := s.SaveDay(date, tr.Tasks(date), tr.Evaluated(date)); err != nil {
		return err
	}
	return s.reorderDays(tr.Days())
}

// reorderDays sets seq from order. Dates without a stored row are skipped.
func (s *Store) reorderDays(order []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reorder days: %w", err)
	}
	defer tx.Rollback()

	for i, date := range order {
		if _, err := tx.Exec(`UPDATE days SET seq = ? WHERE date = ?`, i+1, date); err != nil {
			return fmt.Errorf("reorder day %s: %w", date, err)
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
