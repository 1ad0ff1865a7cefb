package export

import (
	"fmt"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/routine/internal/routine"
)

// PropertyRoutineStatus carries the task status on each exported VEVENT.
const PropertyRoutineStatus = ical.ComponentProperty("X-ROUTINE-STATUS")

// icsStatus maps to the VEVENT statuses. Done and Pending are told apart by
// PropertyRoutineStatus.
var icsStatus = map[routine.Status]string{
	routine.StatusDone:    "CONFIRMED",
	routine.StatusMissed:  "CANCELLED",
	routine.StatusPending: "CONFIRMED",
}

// ToICS writes one VEVENT per task of day, times taken in loc. Tasks whose
// times cannot be read are left out; the number written is returned.
func ToICS(day string, tasks []routine.Task, loc *time.Location, path string) (int, error) {
	if loc == nil {
		loc = time.Local
	}
	if _, err := routine.ParseDay(day, loc); err != nil {
		return 0, err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//routine//planner//EN")

	stamp := time.Now().UTC()
	written := 0
	for _, t := range tasks {
		start, end, ok := taskRange(t, day, loc)
		if !ok {
			continue
		}
		ev := cal.AddEvent(t.ID + "@routine")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(t.Description)
		ev.SetDescription(fmt.Sprintf("Status: %s", t.Status))
		ev.SetProperty(ical.ComponentPropertyStatus, icsStatus[t.Status])
		ev.SetProperty(PropertyRoutineStatus, string(t.Status))
		written++
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create ics file: %w", err)
	}
	defer f.Close()

	if err := cal.SerializeTo(f); err != nil {
		return 0, fmt.Errorf("write ics file: %w", err)
	}
	return written, nil
}

// taskRange resolves a task's times on day. An end at or before the start
// is taken to be on the next day.
func taskRange(t routine.Task, day string, loc *time.Location) (time.Time, time.Time, bool) {
	start, err := routine.StartTime(t, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	eh, em, err := routine.ParseClock(t.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end := time.Date(start.Year(), start.Month(), start.Day(), eh, em, 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}
