package domain

import (
	"time"

	"github.com/m04kA/SMC-CRM/pkg/types"
)

// FeedbackStatus represents the status of customer feedback
type FeedbackStatus string

const (
	FeedbackStatusPending   FeedbackStatus = "Pending"
	FeedbackStatusCompleted FeedbackStatus = "Completed"
)

// FeedbackKindFeedback selects the customer feedback field; any other kind records a contact remark
const FeedbackKindFeedback = "Feedback"

// CustomerFeedback remarks and feedback collected for an opportunity or appointment
type CustomerFeedback struct {
	Name             string
	ReferenceDoctype string
	ReferenceName    string
	FeedbackFrom     string
	PartyName        string
	CustomerName     string
	Title            string
	Status           FeedbackStatus

	ContactDate    *time.Time
	ContactTime    types.TimeString
	ContactRemarks string

	FeedbackDate     *time.Time
	FeedbackTime     types.TimeString
	CustomerFeedback string

	Modified time.Time
}

// IsNew reports whether the feedback has not been inserted yet
func (f *CustomerFeedback) IsNew() bool {
	return f.Name == ""
}

// SetParty sets the party the feedback belongs to
func (f *CustomerFeedback) SetParty(partyType, partyName string) {
	f.FeedbackFrom = partyType
	f.PartyName = partyName
}

// Refresh sets title and status
func (f *CustomerFeedback) Refresh() {
	f.Title = f.CustomerName
	if f.Title == "" {
		f.Title = f.PartyName
	}

	if f.CustomerFeedback != "" {
		f.Status = FeedbackStatusCompleted
	} else {
		f.Status = FeedbackStatusPending
	}
}

// Record stores message as feedback or as a contact remark
func (f *CustomerFeedback) Record(kind, message string, now time.Time) {
	date := DateOnly(now)
	if kind == FeedbackKindFeedback {
		f.FeedbackDate = &date
		f.FeedbackTime = types.NewTimeString(now)
		f.CustomerFeedback = message
		return
	}
	f.ContactDate = &date
	f.ContactTime = types.NewTimeString(now)
	f.ContactRemarks = message
}

// ContactDt combined contact date and time, nil without remarks
func (f *CustomerFeedback) ContactDt() *time.Time {
	if f.ContactRemarks == "" || f.ContactDate == nil {
		return nil
	}
	dt := f.ContactTime.On(*f.ContactDate)
	return &dt
}

// FeedbackDt combined feedback date and time, nil without feedback
func (f *CustomerFeedback) FeedbackDt() *time.Time {
	if f.CustomerFeedback == "" || f.FeedbackDate == nil {
		return nil
	}
	dt := f.FeedbackTime.On(*f.FeedbackDate)
	return &dt
}

// Communications returns the communications to record after saving.
// prev holds the stored values before the save, nil for a new record.
func (f *CustomerFeedback) Communications(prev *CustomerFeedback, sender string, now time.Time) []Communication {
	var prevRemarks, prevFeedback string
	if prev != nil {
		prevRemarks = prev.ContactRemarks
		prevFeedback = prev.CustomerFeedback
	}

	var out []Communication
	if f.ContactRemarks != "" && f.ContactRemarks != prevRemarks {
		out = append(out, f.communication("Customer Feedback Remarks", f.ContactRemarks, sender, now, false))
	}
	if f.CustomerFeedback != "" && f.CustomerFeedback != prevFeedback {
		out = append(out, f.communication("Customer Feedback", f.CustomerFeedback, sender, now, true))
	}
	return out
}

func (f *CustomerFeedback) communication(subject, content, sender string, now time.Time, withLinks bool) Communication {
	if f.ReferenceDoctype != "" && f.ReferenceName != "" {
		subject += " (" + f.ReferenceName + ")"
	}

	c := Communication{
		ReferenceDoctype:  DoctypeCustomerFeedback,
		ReferenceName:     f.Name,
		CommunicationType: CommunicationTypeFeedback,
		Subject:           subject,
		Content:           content,
		Sender:            sender,
		SentOrReceived:    CommunicationReceived,
		CommunicationDate: now,
	}
	if withLinks {
		c.AddLink(f.ReferenceDoctype, f.ReferenceName)
		c.AddLink(f.FeedbackFrom, f.PartyName)
	}
	return c
}
