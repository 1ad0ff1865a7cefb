package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendar(events ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//routine//test//EN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

const (
	standup = "BEGIN:VEVENT\r\n" +
		"UID:standup@test\r\n" +
		"DTSTAMP:20261001T000000Z\r\n" +
		"DTSTART:20261019T090000Z\r\n" +
		"DTEND:20261019T091500Z\r\n" +
		"SUMMARY:Standup\r\n" +
		"RRULE:FREQ=DAILY;COUNT=3\r\n" +
		"EXDATE:20261020T090000Z\r\n" +
		"END:VEVENT"
	lunch = "BEGIN:VEVENT\r\n" +
		"UID:lunch@test\r\n" +
		"DTSTAMP:20261001T000000Z\r\n" +
		"DTSTART:20261019T120000Z\r\n" +
		"DTEND:20261019T130000Z\r\n" +
		"SUMMARY:Lunch\r\n" +
		"END:VEVENT"
	holiday = "BEGIN:VEVENT\r\n" +
		"UID:holiday@test\r\n" +
		"DTSTAMP:20261001T000000Z\r\n" +
		"DTSTART;VALUE=DATE:20261019\r\n" +
		"DTEND;VALUE=DATE:20261020\r\n" +
		"SUMMARY:Holiday\r\n" +
		"END:VEVENT"
	noUID = "BEGIN:VEVENT\r\n" +
		"DTSTAMP:20261001T000000Z\r\n" +
		"DTSTART:20261019T120000Z\r\n" +
		"SUMMARY:Orphan\r\n" +
		"END:VEVENT"
)

func TestParse(t *testing.T) {
	events, err := Parse(calendar(standup, lunch, holiday, noUID), nil)
	require.NoError(t, err)
	require.Len(t, events, 3, "event without UID is skipped")

	byUID := map[string]Event{}
	for _, ev := range events {
		byUID[ev.UID] = ev
	}

	s := byUID["standup@test"]
	assert.Equal(t, "Standup", s.Summary)
	assert.Equal(t, "FREQ=DAILY;COUNT=3", s.RawRRule)
	require.Len(t, s.ExDates, 1)
	assert.True(t, s.ExDates[0].Equal(time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)))
	assert.False(t, s.AllDay)

	assert.True(t, byUID["holiday@test"].AllDay)
	assert.Equal(t, 15*time.Minute, s.End.Sub(s.Start))
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil, nil)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	events, err := Parse(calendar(standup, lunch, holiday), nil)
	require.NoError(t, err)

	drafts, err := Expand(events, ExpandConfig{
		Location: time.UTC,
		From:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	want := []Draft{
		{UID: "standup@test", Date: "2026-10-19", Start: "09:00 AM", End: "09:15 AM", Description: "Standup"},
		{UID: "lunch@test", Date: "2026-10-19", Start: "12:00 PM", End: "01:00 PM", Description: "Lunch"},
		{UID: "standup@test", Date: "2026-10-21", Start: "09:00 AM", End: "09:15 AM", Description: "Standup"},
	}
	assert.Equal(t, want, drafts)
}

func TestExpandWindow(t *testing.T) {
	events, err := Parse(calendar(standup, lunch), nil)
	require.NoError(t, err)

	drafts, err := Expand(events, ExpandConfig{
		Location: time.UTC,
		From:     time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "2026-10-21", drafts[0].Date)
}

func TestExpandCapsOccurrences(t *testing.T) {
	ev := Event{
		UID:      "daily",
		Summary:  "Stretch",
		Start:    time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 1, 1, 7, 10, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}
	drafts, err := Expand([]Event{ev}, ExpandConfig{
		Location:       time.UTC,
		From:           ev.Start,
		To:             ev.Start.AddDate(1, 0, 0),
		MaxOccurrences: 5,
	})
	require.NoError(t, err)
	assert.Len(t, drafts, 5)
}

func TestExpandBadInput(t *testing.T) {
	_, err := Expand(nil, ExpandConfig{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)

	drafts, err := Expand([]Event{{UID: "x", Start: time.Now(), End: time.Now(), RawRRule: "FREQ=SOMETIMES"}}, ExpandConfig{
		From: time.Now().Add(-time.Hour),
		To:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, drafts)
}
