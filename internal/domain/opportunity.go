package domain

import (
	"fmt"
	"sort"
	"time"
)

// OpportunityStatus represents the status of an opportunity
type OpportunityStatus string

const (
	OpportunityStatusOpen       OpportunityStatus = "Open"
	OpportunityStatusReplied    OpportunityStatus = "Replied"
	OpportunityStatusQuotation  OpportunityStatus = "Quotation"
	OpportunityStatusToFollowUp OpportunityStatus = "To Follow Up"
	OpportunityStatusLost       OpportunityStatus = "Lost"
	OpportunityStatusClosed     OpportunityStatus = "Closed"
	OpportunityStatusConverted  OpportunityStatus = "Converted"
)

var opportunityStatuses = []OpportunityStatus{
	OpportunityStatusOpen,
	OpportunityStatusReplied,
	OpportunityStatusQuotation,
	OpportunityStatusToFollowUp,
	OpportunityStatusLost,
	OpportunityStatusClosed,
	OpportunityStatusConverted,
}

// IsValid reports whether s is a known opportunity status
func (s OpportunityStatus) IsValid() bool {
	for _, v := range opportunityStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// AutoLostStatuses statuses an idle opportunity can be auto-marked Lost from
var AutoLostStatuses = []OpportunityStatus{
	OpportunityStatusOpen,
	OpportunityStatusReplied,
	OpportunityStatusQuotation,
}

// Submit-with-action actions
const (
	ActionScheduleFollowUp  = "Schedule Follow Up"
	ActionMarkAsLost        = "Mark As Lost"
	ActionMarkAsClosed      = "Mark As Closed"
	ActionCreateAppointment = "Create Appointment"
)

// FollowUp is one row of the opportunity contact schedule
type FollowUp struct {
	ID           int64
	Idx          int
	ScheduleDate *time.Time
	ContactDate  *time.Time
	ToDiscuss    string

	// IsNew marks rows added in the current save
	IsNew bool
}

// IsPending reports whether the follow up is scheduled and not contacted yet
func (f *FollowUp) IsPending() bool {
	return f.ScheduleDate != nil && f.ContactDate == nil
}

// Opportunity represents a potential sale to a lead
type Opportunity struct {
	Name            string
	OpportunityFrom string
	PartyName       string
	CustomerName    string
	Title           string
	Status          OpportunityStatus
	OpportunityType string
	Source          string
	Campaign        string
	Territory       string

	SalesPerson         string
	SalesPersonMobileNo string
	SalesPersonEmail    string

	TaxID          string
	TaxCNIC        string
	TaxSTRN        string
	AddressDisplay string
	ContactDetails

	TransactionDate time.Time
	NextFollowUp    *time.Time
	ContactSchedule []FollowUp
	LostReasons     []string
	OrderLostReason string

	AppliesToVehicle  string
	AppliesToSerialNo string

	Owner     string
	CreatedAt time.Time
	Modified  time.Time
}

// OpportunityStatusFacts are the lookups that drive the opportunity status
type OpportunityStatusFacts struct {
	IsConverted        bool // a submitted or cancelled appointment exists for the opportunity
	HasCommunication   bool // a non automated communication exists
	HasActiveQuotation bool
	HasLostQuotation   bool
}

// DeriveStatus applies the status cascade. An explicit status is set first.
func (o *Opportunity) DeriveStatus(explicit OpportunityStatus, facts OpportunityStatusFacts, today time.Time) {
	if explicit != "" {
		o.Status = explicit
	}

	switch {
	case facts.IsConverted:
		o.Status = OpportunityStatusConverted
	case o.Status == OpportunityStatusClosed:
		o.Status = OpportunityStatusClosed
	case o.Status == OpportunityStatusLost || (!facts.HasActiveQuotation && facts.HasLostQuotation):
		o.Status = OpportunityStatusLost
	case o.NextFollowUp != nil && !DateOnly(*o.NextFollowUp).Before(DateOnly(today)):
		o.Status = OpportunityStatusToFollowUp
	case facts.HasActiveQuotation:
		o.Status = OpportunityStatusQuotation
	case facts.HasCommunication:
		o.Status = OpportunityStatusReplied
	default:
		o.Status = OpportunityStatusOpen
	}
}

// SetTitle builds the title from the contact and customer names
func (o *Opportunity) SetTitle() {
	o.Title = o.CustomerName
	if o.ContactDisplay != "" && o.ContactDisplay != o.CustomerName {
		o.Title = o.ContactDisplay + " (" + o.CustomerName + ")"
	}
}

// ApplyCustomerDetails copies party fields onto the opportunity.
// Forced fields always follow the party; the rest only fill blanks.
func (o *Opportunity) ApplyCustomerDetails(d CustomerDetails) {
	o.CustomerName = d.CustomerName
	o.TaxID = d.TaxID
	o.TaxCNIC = d.TaxCNIC
	o.TaxSTRN = d.TaxSTRN
	o.Territory = d.Territory
	o.AddressDisplay = d.AddressDisplay
	o.ContactDisplay = d.ContactDisplay
	o.ContactEmail = d.ContactEmail
	o.ContactMobile = d.ContactMobile
	o.ContactPhone = d.ContactPhone

	fillBlank(&o.ContactMobile2, d.ContactMobile2)
	fillBlank(&o.ContactDesignation, d.ContactDesignation)
	fillBlank(&o.Campaign, d.Campaign)
	fillBlank(&o.SalesPerson, d.SalesPerson)
	fillBlank(&o.Source, d.Source)
}

// pendingFollowUps returns pending follow ups ordered by schedule date then row index
func (o *Opportunity) pendingFollowUps() []FollowUp {
	pending := make([]FollowUp, 0, len(o.ContactSchedule))
	for _, f := range o.ContactSchedule {
		if f.IsPending() {
			pending = append(pending, f)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		di, dj := DateOnly(*pending[i].ScheduleDate), DateOnly(*pending[j].ScheduleDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return pending[i].Idx < pending[j].Idx
	})
	return pending
}

// NextFollowUpDate is the earliest pending follow up on or after today,
// otherwise the latest overdue one, otherwise nil
func (o *Opportunity) NextFollowUpDate(today time.Time) *time.Time {
	pending := o.pendingFollowUps()
	if len(pending) == 0 {
		return nil
	}

	day := DateOnly(today)
	for _, f := range pending {
		if !DateOnly(*f.ScheduleDate).Before(day) {
			d := DateOnly(*f.ScheduleDate)
			return &d
		}
	}

	d := DateOnly(*pending[len(pending)-1].ScheduleDate)
	return &d
}

// ValidateFollowUps sets NextFollowUp and checks the contact schedule rows
func (o *Opportunity) ValidateFollowUps(today time.Time) error {
	o.renumberFollowUps()
	o.NextFollowUp = o.NextFollowUpDate(today)

	day := DateOnly(today)
	for _, f := range o.ContactSchedule {
		if f.ContactDate == nil && f.ScheduleDate == nil {
			return Invalid("Row #%d: Please set Contact or Schedule Date in follow up", f.Idx)
		}
		if f.IsNew && f.ContactDate == nil && DateOnly(*f.ScheduleDate).Before(day) {
			return Invalid("Row #%d: Can't schedule a follow up for past dates", f.Idx)
		}
	}
	return nil
}

// AddFollowUp schedules a follow up on date.
// An existing row on the same date is updated only when its discussion text can be replaced.
func (o *Opportunity) AddFollowUp(date time.Time, toDiscuss string) error {
	date = DateOnly(date)

	for i := range o.ContactSchedule {
		f := &o.ContactSchedule[i]
		if f.ScheduleDate == nil || !DateOnly(*f.ScheduleDate).Equal(date) {
			continue
		}
		if (f.ToDiscuss != "" && toDiscuss != f.ToDiscuss) || (f.ToDiscuss == "" && toDiscuss == "") {
			return &ValidationError{
				Message: fmt.Sprintf("Row #%d: Follow Up already scheduled for %s", f.Idx, date.Format(DateFormat)),
				Kind:    ErrFollowUpAlreadyScheduled,
			}
		}
		f.ToDiscuss = toDiscuss
		return nil
	}

	o.ContactSchedule = append(o.ContactSchedule, FollowUp{
		Idx:          len(o.ContactSchedule) + 1,
		ScheduleDate: &date,
		ToDiscuss:    toDiscuss,
		IsNew:        true,
	})
	return nil
}

// SetFollowUpContactDate marks the first uncontacted follow up as contacted.
// Returns false when every row is already contacted.
func (o *Opportunity) SetFollowUpContactDate(date time.Time) bool {
	date = DateOnly(date)
	for i := range o.ContactSchedule {
		if o.ContactSchedule[i].ContactDate == nil {
			o.ContactSchedule[i].ContactDate = &date
			return true
		}
	}
	return false
}

func (o *Opportunity) renumberFollowUps() {
	for i := range o.ContactSchedule {
		o.ContactSchedule[i].Idx = i + 1
	}
}

// CanNotify reports whether a notification of the type may be sent for the opportunity
func (o *Opportunity) CanNotify(notificationType NotificationType) error {
	if notificationType == "" {
		return Invalid("Notification Type is mandatory")
	}
	if o.Status == OpportunityStatusLost || o.Status == OpportunityStatusClosed {
		return Invalid("Cannot send %s notification because Opportunity is %s", notificationType, o.Status)
	}
	return nil
}

// Receiver phone number used for SMS notifications
func (o *Opportunity) Receiver() string {
	if o.ContactMobile != "" {
		return o.ContactMobile
	}
	return o.ContactPhone
}

// OpportunityFollowUpEvent calendar entry for a scheduled follow up
type OpportunityFollowUpEvent struct {
	Name         string
	CustomerName string
	Status       OpportunityStatus
	ScheduleDate time.Time
}

func fillBlank(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// NewAppointment maps the opportunity into an unsaved appointment
func (o *Opportunity) NewAppointment(appointmentType string) *Appointment {
	return &Appointment{
		DocStatus:         DocStatusDraft,
		Status:            AppointmentStatusDraft,
		AppointmentType:   appointmentType,
		AppointmentFor:    o.OpportunityFrom,
		PartyName:         o.PartyName,
		CustomerName:      o.CustomerName,
		TaxID:             o.TaxID,
		TaxCNIC:           o.TaxCNIC,
		TaxSTRN:           o.TaxSTRN,
		AddressDisplay:    o.AddressDisplay,
		ContactDetails:    o.ContactDetails,
		SalesPerson:       o.SalesPerson,
		Opportunity:       o.Name,
		AppliesToVehicle:  o.AppliesToVehicle,
		AppliesToSerialNo: o.AppliesToSerialNo,
	}
}

// SetLost marks the opportunity Lost with the reasons, or reopens it.
// converted tells whether a confirmed appointment exists for the opportunity.
func (o *Opportunity) SetLost(isLost, converted bool, reasons []string, detailedReason string) error {
	if isLost && (converted || o.Status == OpportunityStatusConverted) {
		return Invalid("Cannot declare as Lost because Opportunity is already converted")
	}

	if isLost {
		o.Status = OpportunityStatusLost
		o.LostReasons = reasons
		o.OrderLostReason = detailedReason
		return nil
	}

	o.Status = OpportunityStatusOpen
	o.LostReasons = nil
	o.OrderLostReason = ""
	return nil
}
