// Package lifecycle derives a listing's Active/Archived status from its end
// date. The status is computed, never stored.
package lifecycle

import "time"

// Status of a listing relative to a point in time.
type Status string

const (
	Active   Status = "active"
	Archived Status = "archived"
)

// Classify returns Archived when endDate <= now, else Active. Deterministic
// for a fixed now.
func Classify(endDate, now time.Time) Status {
	if !endDate.After(now) {
		return Archived
	}
	return Active
}

// MonthsBetween returns the calendar-month difference from start to now.
// Day-of-month is ignored, so a start late in March counts a full month by
// April 1st; negative for future start dates.
func MonthsBetween(now, start time.Time) int {
	return int(now.Month()) - int(start.Month()) + 12*(now.Year()-start.Year())
}
