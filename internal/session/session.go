// Package session binds a routine.Tracker to a store. Every handler applies
// one command to the tracker and writes the touched day through.
package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/ics"
	"github.com/sadopc/routine/internal/routine"
	"github.com/sadopc/routine/internal/store"
)

type Session struct {
	tracker *routine.Tracker
	store   *store.Store
	logger  *zap.Logger
}

// Open restores the tracker from s. Tracker options (clock, logger) are
// passed through.
func Open(s *store.Store, logger *zap.Logger, opts ...routine.Option) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]routine.Option{routine.WithLogger(logger)}, opts...)
	tr := routine.NewTracker(opts...)
	if s != nil {
		if err := s.LoadInto(tr); err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
	}
	return &Session{tracker: tr, store: s, logger: logger}, nil
}

func (s *Session) Tracker() *routine.Tracker { return s.tracker }
func (s *Session) Store() *store.Store       { return s.store }

func (s *Session) persist(day string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SyncDay(s.tracker, day); err != nil {
		s.logger.Error("persist day failed", zap.String("day", day), zap.Error(err))
		return fmt.Errorf("save %s: %w", day, err)
	}
	return nil
}

func (s *Session) AddTask(day, start, end, description string) (routine.Task, error) {
	t, err := s.tracker.AddTask(day, start, end, description)
	if err != nil {
		return routine.Task{}, err
	}
	return t, s.persist(day)
}

func (s *Session) MarkStatus(day string, index int, status routine.Status) error {
	if err := s.tracker.MarkStatus(day, index, status); err != nil {
		return err
	}
	return s.persist(day)
}

// DeleteTasks removes a batch of indices; stale ones are ignored.
func (s *Session) DeleteTasks(day string, indices ...int) (int, error) {
	n := s.tracker.DeleteTasks(day, indices...)
	if n == 0 {
		return 0, nil
	}
	return n, s.persist(day)
}

// EvaluateDay scores the day. The evaluated flag is persisted so a reload
// shows the score again.
func (s *Session) EvaluateDay(day string) (routine.Evaluation, error) {
	ev, err := s.tracker.EvaluateDay(day)
	if err != nil {
		return routine.Evaluation{}, err
	}
	return ev, s.persist(day)
}

// Tasks returns the day's tasks. Viewing a day is its first reference.
func (s *Session) Tasks(day string) []routine.Task {
	return s.tracker.Tasks(day)
}

// Import adds every draft as a task. Drafts that fail validation are
// skipped and counted.
func (s *Session) Import(drafts []ics.Draft) (added, skipped int, err error) {
	touched := make(map[string]bool)
	var order []string
	for _, d := range drafts {
		if _, aerr := s.tracker.AddTask(d.Date, d.Start, d.End, d.Description); aerr != nil {
			s.logger.Warn("skipping imported event", zap.String("uid", d.UID), zap.Error(aerr))
			skipped++
			continue
		}
		added++
		if !touched[d.Date] {
			touched[d.Date] = true
			order = append(order, d.Date)
		}
	}
	for _, day := range order {
		if err := s.persist(day); err != nil {
			return added, skipped, err
		}
	}
	return added, skipped, nil
}
