package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/routine"
)

const defaultMaxOccurrences = 1000

// Draft is one dated task waiting to be added to a tracker.
type Draft struct {
	UID         string
	Date        string
	Start       string
	End         string
	Description string
}

type ExpandConfig struct {
	// Location is the display zone of the resulting tasks; nil means Local.
	Location *time.Location
	// From and To bound occurrence starts, inclusive.
	From time.Time
	To   time.Time

	MaxOccurrences int
	Logger         *zap.Logger
}

// Expand converts events into drafts, expanding RRULE and EXDATE. All-day
// events are skipped since a task needs a time range.
func Expand(events []Event, cfg ExpandConfig) ([]Draft, error) {
	if cfg.To.Before(cfg.From) {
		return nil, errors.New("expand: To is before From")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var drafts []Draft
	for _, ev := range events {
		if ev.AllDay {
			cfg.Logger.Debug("skipping all-day event", zap.String("uid", ev.UID))
			continue
		}
		for _, start := range occurrences(ev, cfg) {
			end := start.Add(ev.End.Sub(ev.Start))
			drafts = append(drafts, makeDraft(ev, start, end, cfg.Location))
		}
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		if drafts[i].Date != drafts[j].Date {
			return drafts[i].Date < drafts[j].Date
		}
		return clockMinutes(drafts[i].Start) < clockMinutes(drafts[j].Start)
	})
	return drafts, nil
}

func occurrences(ev Event, cfg ExpandConfig) []time.Time {
	if ev.RawRRule == "" {
		if ev.Start.Before(cfg.From) || ev.Start.After(cfg.To) {
			return nil
		}
		return []time.Time{ev.Start}
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		cfg.Logger.Warn("expand: failed to parse RRULE",
			zap.String("uid", ev.UID), zap.String("rrule", ev.RawRRule), zap.Error(err))
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	from := cfg.From.In(ev.Start.Location())
	to := cfg.To.In(ev.Start.Location())
	times := set.Between(from, to, true)
	if len(times) > cfg.MaxOccurrences {
		cfg.Logger.Warn("expand: occurrences truncated",
			zap.String("uid", ev.UID), zap.Int("cap", cfg.MaxOccurrences))
		times = times[:cfg.MaxOccurrences]
	}
	return times
}

func makeDraft(ev Event, start, end time.Time, loc *time.Location) Draft {
	s := start.In(loc)
	e := end.In(loc)
	return Draft{
		UID:         ev.UID,
		Date:        routine.DayKey(s),
		Start:       routine.FormatClock(s.Hour(), s.Minute()),
		End:         routine.FormatClock(e.Hour(), e.Minute()),
		Description: ev.Summary,
	}
}

func clockMinutes(v string) int {
	h, m, err := routine.ParseClock(v)
	if err != nil {
		return 0
	}
	return h*60 + m
}
