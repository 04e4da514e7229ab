package domain

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-CRM/pkg/types"
)

// AppointmentTypeTimeslot is a weekly availability window
type AppointmentTypeTimeslot struct {
	DayOfWeek time.Weekday
	FromTime  types.TimeString
	ToTime    types.TimeString
}

// Holiday is a date on which appointments of the type should not be booked
type Holiday struct {
	Date        time.Time
	Description string
}

// AppointmentType describes how appointments of one kind are scheduled
type AppointmentType struct {
	Name                            string
	AppointmentDuration             int // minutes
	NumberOfAgents                  int // 0 = unlimited
	AdvanceBookingDays              int // 0 = unlimited
	ValidatePastTimeslot            bool
	ValidateAvailability            bool
	ValidateSalesPersonAvailability bool
	SalesPersonMandatory            bool
	CreateCalendarEvent             bool
	EmailReminders                  bool

	Timeslots    []AppointmentTypeTimeslot
	Holidays     []Holiday
	SalesPersons []string

	Modified time.Time
}

// Timeslot is a concrete bookable interval
type Timeslot struct {
	Start time.Time
	End   time.Time
}

// DurationMinutes length of the slot
func (t Timeslot) DurationMinutes() int {
	return int(t.End.Sub(t.Start).Round(time.Minute) / time.Minute)
}

// HasSchedule reports whether weekly timeslots are configured
func (t *AppointmentType) HasSchedule() bool {
	return len(t.Timeslots) > 0
}

// GetTimeslots generates the bookable slots for the date.
// Returns nil when no schedule is configured, an empty slice when the weekday is closed.
// Slots step by the appointment duration from each window start while the slot end fits the window.
func (t *AppointmentType) GetTimeslots(date time.Time) []Timeslot {
	if !t.HasSchedule() {
		return nil
	}

	slots := make([]Timeslot, 0)
	for _, row := range t.rowsFor(date.Weekday()) {
		windowStart := row.FromTime.On(date)
		windowEnd := row.ToTime.On(date)
		if !windowStart.Before(windowEnd) {
			continue
		}

		if t.AppointmentDuration <= 0 {
			slots = append(slots, Timeslot{Start: windowStart, End: windowEnd})
			continue
		}

		step := time.Duration(t.AppointmentDuration) * time.Minute
		for start := windowStart; !start.Add(step).After(windowEnd); start = start.Add(step) {
			slots = append(slots, Timeslot{Start: start, End: start.Add(step)})
		}
	}

	sortTimeslots(slots)
	return slots
}

// IsInTimeslot reports whether [start, end] fits inside one availability window of that weekday.
// Always true when no schedule is configured.
func (t *AppointmentType) IsInTimeslot(start, end time.Time) bool {
	if !t.HasSchedule() {
		return true
	}
	if !SameDay(start, end) && !(end.Equal(DateOnly(end)) && DaysBetween(start, end) == 1) {
		return false
	}

	for _, row := range t.rowsFor(start.Weekday()) {
		windowStart := row.FromTime.On(start)
		windowEnd := row.ToTime.On(start)
		if !start.Before(windowStart) && !end.After(windowEnd) {
			return true
		}
	}
	return false
}

// IsHoliday returns the holiday description for the date, or "" for a working day
func (t *AppointmentType) IsHoliday(date time.Time) string {
	for _, h := range t.Holidays {
		if SameDay(h.Date, date) {
			if h.Description == "" {
				return "Holiday"
			}
			return h.Description
		}
	}
	return ""
}

// AllowsSalesPerson reports whether the sales person may be assigned.
// An empty list allows everyone.
func (t *AppointmentType) AllowsSalesPerson(name string) bool {
	if len(t.SalesPersons) == 0 {
		return true
	}
	for _, sp := range t.SalesPersons {
		if sp == name {
			return true
		}
	}
	return false
}

func (t *AppointmentType) rowsFor(day time.Weekday) []AppointmentTypeTimeslot {
	rows := make([]AppointmentTypeTimeslot, 0)
	for _, row := range t.Timeslots {
		if row.DayOfWeek == day {
			rows = append(rows, row)
		}
	}
	return rows
}

func sortTimeslots(slots []Timeslot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
}

// ParseWeekday converts an English weekday name to time.Weekday
func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, true
		}
	}
	return time.Sunday, false
}
