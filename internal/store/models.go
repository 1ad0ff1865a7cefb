package store

import "time"

// DayRecord is a stored day without its tasks.
type DayRecord struct {
	Date      string
	Seq       int64
	Evaluated bool
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}
