package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunity_DeriveStatus(t *testing.T) {
	today := *datePtr("2026-10-16")

	tests := []struct {
		name     string
		opp      Opportunity
		explicit OpportunityStatus
		facts    OpportunityStatusFacts
		want     OpportunityStatus
	}{
		{name: "open", opp: Opportunity{}, want: OpportunityStatusOpen},
		{name: "converted", opp: Opportunity{Status: OpportunityStatusClosed}, facts: OpportunityStatusFacts{IsConverted: true}, want: OpportunityStatusConverted},
		{name: "closed stays", opp: Opportunity{Status: OpportunityStatusClosed, NextFollowUp: datePtr("2026-10-20")}, want: OpportunityStatusClosed},
		{name: "explicit lost", opp: Opportunity{Status: OpportunityStatusOpen}, explicit: OpportunityStatusLost, want: OpportunityStatusLost},
		{name: "follow up today", opp: Opportunity{NextFollowUp: datePtr("2026-10-16")}, facts: OpportunityStatusFacts{HasCommunication: true}, want: OpportunityStatusToFollowUp},
		{name: "overdue follow up replied", opp: Opportunity{NextFollowUp: datePtr("2026-10-10")}, facts: OpportunityStatusFacts{HasCommunication: true}, want: OpportunityStatusReplied},
		{name: "to follow up falls back to open", opp: Opportunity{Status: OpportunityStatusToFollowUp}, want: OpportunityStatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opp
			o.DeriveStatus(tt.explicit, tt.facts, today)
			assert.Equal(t, tt.want, o.Status)
		})
	}
}

func TestOpportunity_NextFollowUpDate(t *testing.T) {
	today := *datePtr("2026-10-16")

	o := &Opportunity{ContactSchedule: []FollowUp{
		{Idx: 1, ScheduleDate: datePtr("2026-10-10")},
		{Idx: 2, ScheduleDate: datePtr("2026-10-25")},
		{Idx: 3, ScheduleDate: datePtr("2026-10-18")},
		{Idx: 4, ScheduleDate: datePtr("2026-10-17"), ContactDate: datePtr("2026-10-16")},
	}}
	got := o.NextFollowUpDate(today)
	require.NotNil(t, got)
	assert.Equal(t, *datePtr("2026-10-18"), *got)

	overdue := &Opportunity{ContactSchedule: []FollowUp{
		{Idx: 1, ScheduleDate: datePtr("2026-10-01")},
		{Idx: 2, ScheduleDate: datePtr("2026-10-12")},
	}}
	got = overdue.NextFollowUpDate(today)
	require.NotNil(t, got)
	assert.Equal(t, *datePtr("2026-10-12"), *got)

	assert.Nil(t, (&Opportunity{}).NextFollowUpDate(today))
}

func TestOpportunity_ValidateFollowUps(t *testing.T) {
	today := *datePtr("2026-10-16")

	o := &Opportunity{ContactSchedule: []FollowUp{
		{ScheduleDate: datePtr("2026-10-01"), ContactDate: datePtr("2026-10-01")},
		{ScheduleDate: datePtr("2026-10-20"), IsNew: true},
	}}
	require.NoError(t, o.ValidateFollowUps(today))
	assert.Equal(t, 2, o.ContactSchedule[1].Idx)
	require.NotNil(t, o.NextFollowUp)
	assert.Equal(t, *datePtr("2026-10-20"), *o.NextFollowUp)

	empty := &Opportunity{ContactSchedule: []FollowUp{{}}}
	err := empty.ValidateFollowUps(today)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Row #1")

	past := &Opportunity{ContactSchedule: []FollowUp{{ScheduleDate: datePtr("2026-10-15"), IsNew: true}}}
	assert.ErrorIs(t, past.ValidateFollowUps(today), ErrValidation)

	stored := &Opportunity{ContactSchedule: []FollowUp{{ScheduleDate: datePtr("2026-10-15")}}}
	assert.NoError(t, stored.ValidateFollowUps(today))
}

func TestOpportunity_AddFollowUp(t *testing.T) {
	date := *datePtr("2026-10-20")

	o := &Opportunity{}
	require.NoError(t, o.AddFollowUp(date, ""))
	require.Len(t, o.ContactSchedule, 1)
	assert.True(t, o.ContactSchedule[0].IsNew)

	err := o.AddFollowUp(date, "")
	assert.ErrorIs(t, err, ErrFollowUpAlreadyScheduled)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, o.AddFollowUp(date, "price"))
	assert.Equal(t, "price", o.ContactSchedule[0].ToDiscuss)

	assert.ErrorIs(t, o.AddFollowUp(date, "delivery"), ErrFollowUpAlreadyScheduled)
	assert.NoError(t, o.AddFollowUp(date, "price"))

	require.NoError(t, o.AddFollowUp(*datePtr("2026-10-21"), "delivery"))
	assert.Len(t, o.ContactSchedule, 2)
	assert.Equal(t, 2, o.ContactSchedule[1].Idx)
}

func TestOpportunity_SetFollowUpContactDate(t *testing.T) {
	o := &Opportunity{ContactSchedule: []FollowUp{
		{Idx: 1, ScheduleDate: datePtr("2026-10-10"), ContactDate: datePtr("2026-10-10")},
		{Idx: 2, ScheduleDate: datePtr("2026-10-15")},
	}}

	assert.True(t, o.SetFollowUpContactDate(*datePtr("2026-10-16")))
	assert.Equal(t, *datePtr("2026-10-16"), *o.ContactSchedule[1].ContactDate)
	assert.False(t, o.SetFollowUpContactDate(*datePtr("2026-10-17")))
}

func TestOpportunity_SetTitle(t *testing.T) {
	o := &Opportunity{CustomerName: "Acme"}
	o.SetTitle()
	assert.Equal(t, "Acme", o.Title)

	o.ContactDisplay = "Mr Ali"
	o.SetTitle()
	assert.Equal(t, "Mr Ali (Acme)", o.Title)
}

func TestOpportunity_SetLost(t *testing.T) {
	o := &Opportunity{Status: OpportunityStatusOpen}

	require.NoError(t, o.SetLost(true, false, []string{"Price"}, "too expensive"))
	assert.Equal(t, OpportunityStatusLost, o.Status)
	assert.Equal(t, []string{"Price"}, o.LostReasons)
	assert.Equal(t, "too expensive", o.OrderLostReason)

	require.NoError(t, o.SetLost(false, false, nil, ""))
	assert.Equal(t, OpportunityStatusOpen, o.Status)
	assert.Empty(t, o.LostReasons)
	assert.Empty(t, o.OrderLostReason)

	assert.ErrorIs(t, o.SetLost(true, true, nil, ""), ErrValidation)
}

func TestOpportunity_CanNotify(t *testing.T) {
	o := &Opportunity{Status: OpportunityStatusOpen}
	assert.NoError(t, o.CanNotify(NotificationOpportunityGreeting))
	assert.ErrorIs(t, o.CanNotify(""), ErrValidation)

	o.Status = OpportunityStatusLost
	assert.ErrorIs(t, o.CanNotify(NotificationCustomMessage), ErrValidation)
}

func TestOpportunity_ApplyCustomerDetails(t *testing.T) {
	o := &Opportunity{CustomerName: "stale", Territory: "old", SalesPerson: "Sara", ContactDetails: ContactDetails{ContactMobile: "0300"}}
	o.ApplyCustomerDetails(CustomerDetails{
		CustomerName:   "Acme",
		Territory:      "Lahore",
		SalesPerson:    "Bilal",
		ContactDetails: ContactDetails{ContactMobile: "03111111111"},
	})

	assert.Equal(t, "Acme", o.CustomerName)
	assert.Equal(t, "Lahore", o.Territory)
	assert.Equal(t, "Sara", o.SalesPerson)
	assert.Equal(t, "03111111111", o.ContactMobile)
}

func TestOpportunity_NewAppointment(t *testing.T) {
	o := &Opportunity{
		Name:            "OPP-00001",
		OpportunityFrom: PartyTypeLead,
		PartyName:       "LEAD-00001",
		CustomerName:    "Acme",
		SalesPerson:     "Sara",
	}

	a := o.NewAppointment("Test Drive")

	assert.Equal(t, "OPP-00001", a.Opportunity)
	assert.Equal(t, PartyTypeLead, a.AppointmentFor)
	assert.Equal(t, "LEAD-00001", a.PartyName)
	assert.Equal(t, "Test Drive", a.AppointmentType)
	assert.Equal(t, "Sara", a.SalesPerson)
	assert.True(t, a.IsNew())
}
