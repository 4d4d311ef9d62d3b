package entity

import "time"

// TimeEntry is a tracked interval owned by one user. EndUTC == nil means the
// entry is running; Seconds is denormalized and recomputed whenever the
// window changes.
type TimeEntry struct {
	ID          string
	UserID      string
	ProjectCode string
	Activity    string
	StartUTC    time.Time
	EndUTC      *time.Time
	Seconds     int
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Running reports whether the entry is an open timer.
func (e *TimeEntry) Running() bool { return e.EndUTC == nil }
