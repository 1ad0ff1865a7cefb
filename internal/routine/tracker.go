// Package routine holds the planner core: tasks grouped by calendar day,
// status changes, display labels and day scoring.
package routine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type day struct {
	tasks     []Task
	evaluated bool
}

// Tracker maps days to their ordered tasks. It is owned by a single session
// and is not safe for concurrent use.
type Tracker struct {
	days  map[string]*day
	order []string // first reference order

	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Tracker)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		days:   make(map[string]*day),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// ref returns the day, creating it on first reference.
func (t *Tracker) ref(key string) *day {
	d, ok := t.days[key]
	if !ok {
		d = &day{}
		t.days[key] = d
		t.order = append(t.order, key)
	}
	return d
}

func (t *Tracker) AddTask(dayKey, start, end, description string) (Task, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return Task{}, fmt.Errorf("%w: task description is empty", ErrValidation)
	}
	if _, err := ParseDay(dayKey, time.Local); err != nil {
		return Task{}, err
	}

	task := Task{
		ID:          uuid.NewString(),
		Start:       normalizeClock(start),
		End:         normalizeClock(end),
		Description: desc,
		Status:      StatusPending,
	}
	d := t.ref(dayKey)
	d.tasks = append(d.tasks, task)
	d.evaluated = false

	t.logger.Debug("task added",
		zap.String("day", dayKey),
		zap.String("start", task.Start),
		zap.String("end", task.End),
		zap.Int("count", len(d.tasks)),
	)
	return task, nil
}

// MarkStatus finalizes a task as Done or Missed. Tasks that have not started
// yet are rejected with ErrFutureTask.
func (t *Tracker) MarkStatus(dayKey string, index int, status Status) error {
	if !status.Final() {
		return fmt.Errorf("%w: status must be Done or Missed, got %q", ErrValidation, status)
	}
	d, ok := t.days[dayKey]
	if !ok || index < 0 || index >= len(d.tasks) {
		return fmt.Errorf("mark task %d on %s: %w", index, dayKey, ErrIndex)
	}

	future, err := IsFuture(d.tasks[index], dayKey, t.now())
	if err != nil {
		return err
	}
	if future {
		return fmt.Errorf("mark task %d on %s: %w", index, dayKey, ErrFutureTask)
	}

	d.tasks[index].Status = status
	d.evaluated = false
	t.logger.Debug("task marked",
		zap.String("day", dayKey),
		zap.Int("index", index),
		zap.String("status", string(status)),
	)
	return nil
}

// DeleteTask removes the task at index. Out-of-range indices are ignored so
// that stale indices from an older render are harmless.
func (t *Tracker) DeleteTask(dayKey string, index int) bool {
	return t.DeleteTasks(dayKey, index) == 1
}

// DeleteTasks removes a batch of indices, highest first, so earlier removals
// do not shift later ones. It returns how many tasks were removed.
func (t *Tracker) DeleteTasks(dayKey string, indices ...int) int {
	d, ok := t.days[dayKey]
	if !ok || len(indices) == 0 {
		return 0
	}

	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	removed := 0
	last := -1
	for i, idx := range sorted {
		if i > 0 && idx == last {
			continue
		}
		last = idx
		if idx < 0 || idx >= len(d.tasks) {
			t.logger.Debug("ignoring stale delete index", zap.String("day", dayKey), zap.Int("index", idx))
			continue
		}
		d.tasks = append(d.tasks[:idx], d.tasks[idx+1:]...)
		removed++
	}
	if removed > 0 {
		d.evaluated = false
	}
	return removed
}

// Tasks returns a copy of the day's tasks, creating the day if needed.
func (t *Tracker) Tasks(dayKey string) []Task {
	d := t.ref(dayKey)
	out := make([]Task, len(d.tasks))
	copy(out, d.tasks)
	return out
}

// Days lists day keys in order of first reference.
func (t *Tracker) Days() []string {
	return append([]string(nil), t.order...)
}

func (t *Tracker) Evaluated(dayKey string) bool {
	d, ok := t.days[dayKey]
	return ok && d.evaluated
}

// Score computes the day's score without evaluating it.
func (t *Tracker) Score(dayKey string) (Score, error) {
	d, ok := t.days[dayKey]
	if !ok {
		return Score{}, ErrNoTasks
	}
	return ComputeDayScore(d.tasks)
}

// EvaluateDay scores the day once every task is finalized and marks it
// evaluated. Any Pending task fails with ErrIncompleteEvaluation and leaves
// the day untouched.
func (t *Tracker) EvaluateDay(dayKey string) (Evaluation, error) {
	d, ok := t.days[dayKey]
	if !ok || len(d.tasks) == 0 {
		return Evaluation{}, fmt.Errorf("evaluate %s: %w", dayKey, ErrNoTasks)
	}
	if !AllFinal(d.tasks) {
		return Evaluation{}, fmt.Errorf("evaluate %s: %w", dayKey, ErrIncompleteEvaluation)
	}
	score, err := ComputeDayScore(d.tasks)
	if err != nil {
		return Evaluation{}, err
	}
	d.evaluated = true

	ev := Evaluation{Day: dayKey, Score: score, Feedback: ClassifyScore(score.Percent)}
	t.logger.Info("day evaluated",
		zap.String("day", dayKey),
		zap.Int("percent", score.Percent),
		zap.String("feedback", string(ev.Feedback)),
	)
	return ev, nil
}

// Summary returns one row per day that has tasks, in first reference order.
func (t *Tracker) Summary() []SummaryRow {
	var rows []SummaryRow
	for _, key := range t.order {
		score, err := ComputeDayScore(t.days[key].tasks)
		if err != nil {
			continue
		}
		rows = append(rows, SummaryRow{
			Day:       key,
			Total:     score.Total,
			Completed: score.Completed,
			Percent:   score.Percent,
			Feedback:  ClassifyScore(score.Percent),
		})
	}
	return rows
}

func (t *Tracker) Snapshot() []DaySnapshot {
	out := make([]DaySnapshot, 0, len(t.order))
	for _, key := range t.order {
		d := t.days[key]
		tasks := make([]Task, len(d.tasks))
		copy(tasks, d.tasks)
		out = append(out, DaySnapshot{Day: key, Tasks: tasks, Evaluated: d.evaluated})
	}
	return out
}

// Restore replaces a day's content, e.g. when loading from a store. Tasks
// without an ID get one; invalid statuses become Pending.
func (t *Tracker) Restore(dayKey string, tasks []Task, evaluated bool) {
	d := t.ref(dayKey)
	d.tasks = make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if !task.Status.Valid() {
			t.logger.Warn("unknown status restored as pending",
				zap.String("day", dayKey), zap.String("status", string(task.Status)))
			task.Status = StatusPending
		}
		d.tasks = append(d.tasks, task)
	}
	d.evaluated = evaluated && len(d.tasks) > 0 && AllFinal(d.tasks)
}

// Overlap is a pair of task indices whose time ranges intersect.
type Overlap struct {
	First, Second int
}

// Overlaps reports overlapping time ranges on a day. Overlaps are allowed;
// this is informational. Tasks with unparseable times are skipped. An end at
// or before the start is on the next day.
func (t *Tracker) Overlaps(dayKey string) []Overlap {
	d, ok := t.days[dayKey]
	if !ok {
		return nil
	}
	type span struct{ from, to int }
	spans := make([]*span, len(d.tasks))
	for i, task := range d.tasks {
		sh, sm, err1 := ParseClock(task.Start)
		eh, em, err2 := ParseClock(task.End)
		if err1 != nil || err2 != nil {
			continue
		}
		from, to := sh*60+sm, eh*60+em
		if to <= from {
			to += 24 * 60
		}
		spans[i] = &span{from: from, to: to}
	}

	var out []Overlap
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a == nil || b == nil {
				continue
			}
			if a.from < b.to && b.from < a.to {
				out = append(out, Overlap{First: i, Second: j})
			}
		}
	}
	return out
}
