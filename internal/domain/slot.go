package domain

// SlotFilter narrows the appointments overlapping an interval
type SlotFilter struct {
	AppointmentType string
	SalesPerson     string
	Exclude         string // appointment name to ignore
}

// SlotAppointment appointment occupying an interval
type SlotAppointment struct {
	Name        string
	SalesPerson string
}

// TimeslotAvailability slot with booking counters
type TimeslotAvailability struct {
	Timeslot
	NumberOfAgents int // 0 = unlimited
	Booked         int
	Available      int
}

// NewTimeslotAvailability fills the counters of the slot
func NewTimeslotAvailability(slot Timeslot, numberOfAgents, booked int) TimeslotAvailability {
	available := numberOfAgents - booked
	if available < 0 {
		available = 0
	}
	return TimeslotAvailability{
		Timeslot:       slot,
		NumberOfAgents: numberOfAgents,
		Booked:         booked,
		Available:      available,
	}
}

// IsFull returns true if the slot has no available agents
func (s *TimeslotAvailability) IsFull() bool {
	return s.NumberOfAgents > 0 && s.Available <= 0
}

// TimeslotsResult slots of an appointment type on one date
type TimeslotsResult struct {
	Holiday   string
	Timeslots []TimeslotAvailability // nil when the type has no schedule
}
