package scheduler

import (
	"fmt"
	"time"
)

// DailySchedule runs a job once per day at a fixed wall-clock time in a
// given location. Used for the midnight leaderboard publication, which
// must fire on Seoul days regardless of the host timezone.
type DailySchedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// NewDailySchedule creates a schedule that fires daily at hour:minute in loc.
func NewDailySchedule(hour, minute int, loc *time.Location) DailySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return DailySchedule{Hour: hour, Minute: minute, Location: loc}
}

// Next returns the next occurrence of the configured wall-clock time
// strictly after t.
func (s DailySchedule) Next(t time.Time) time.Time {
	local := t.In(s.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, s.Location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String returns a human-readable representation of the schedule.
func (s DailySchedule) String() string {
	return fmt.Sprintf("@daily %02d:%02d %s", s.Hour, s.Minute, s.Location)
}
