package domain

import "time"

// TimeProvider source of the current time (for tests)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the wall clock of a location.
// Timestamps are stored without a zone, so the wall clock is re-expressed in UTC
// to match what the driver returns for TIMESTAMP columns.
type RealTimeProvider struct {
	Location *time.Location
}

// Now returns the current wall clock time
func (p *RealTimeProvider) Now() time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return WallClock(time.Now().In(loc))
}

// FixedTimeProvider always returns the same instant
type FixedTimeProvider struct {
	T time.Time
}

func (p *FixedTimeProvider) Now() time.Time {
	return p.T
}

// WallClock keeps the wall clock reading of t and drops its zone
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// DateOnly truncates t to midnight
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween whole days from a to b, ignoring the time of day
func DaysBetween(a, b time.Time) int {
	da, db := DateOnly(a), DateOnly(b)
	da = time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	db = time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar date
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
