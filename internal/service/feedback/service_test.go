package feedback

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointment"
	feedbackRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/feedback"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	opportunityRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/opportunity"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

var now = time.Date(2026, 10, 16, 11, 30, 0, 0, time.UTC)

type fakeFeedback struct {
	items map[string]domain.CustomerFeedback
	seq   int
}

func (f *fakeFeedback) Create(_ context.Context, fb *domain.CustomerFeedback) (*domain.CustomerFeedback, error) {
	f.seq++
	fb.Name = fmt.Sprintf("CF-%05d", f.seq)
	f.items[fb.Name] = *fb
	return fb, nil
}

func (f *fakeFeedback) Update(_ context.Context, fb *domain.CustomerFeedback) error {
	if _, ok := f.items[fb.Name]; !ok {
		return feedbackRepo.ErrFeedbackNotFound
	}
	f.items[fb.Name] = *fb
	return nil
}

func (f *fakeFeedback) GetByName(_ context.Context, name string) (*domain.CustomerFeedback, error) {
	fb, ok := f.items[name]
	if !ok {
		return nil, feedbackRepo.ErrFeedbackNotFound
	}
	return &fb, nil
}

func (f *fakeFeedback) GetByReference(_ context.Context, doctype, name string) (*domain.CustomerFeedback, error) {
	for _, fb := range f.items {
		if fb.ReferenceDoctype == doctype && fb.ReferenceName == name {
			fb := fb
			return &fb, nil
		}
	}
	return nil, feedbackRepo.ErrFeedbackNotFound
}

type fakeCommunications struct {
	created []domain.Communication
}

func (f *fakeCommunications) Create(_ context.Context, c *domain.Communication) (*domain.Communication, error) {
	f.created = append(f.created, *c)
	return c, nil
}

type fakeLeads struct{}

func (fakeLeads) GetByName(_ context.Context, name string) (*domain.Lead, error) {
	if name != "LEAD-00001" {
		return nil, leadRepo.ErrLeadNotFound
	}
	return &domain.Lead{Name: name, LeadName: "Ali Khan", CompanyName: "Khan Motors"}, nil
}

type fakeOpportunities struct{}

func (fakeOpportunities) GetByName(_ context.Context, name string) (*domain.Opportunity, error) {
	if name != "OPP-00001" {
		return nil, opportunityRepo.ErrOpportunityNotFound
	}
	return &domain.Opportunity{Name: name, OpportunityFrom: domain.PartyTypeLead, PartyName: "LEAD-00001"}, nil
}

type fakeAppointments struct{}

func (fakeAppointments) GetByName(_ context.Context, name string) (*domain.Appointment, error) {
	switch name {
	case "APT-00001":
		return &domain.Appointment{Name: name, AppointmentFor: domain.PartyTypeLead, PartyName: "LEAD-00001"}, nil
	case "APT-00002":
		return &domain.Appointment{Name: name}, nil
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newService() (*Service, *fakeFeedback, *fakeCommunications) {
	fb := &fakeFeedback{items: map[string]domain.CustomerFeedback{}}
	comms := &fakeCommunications{}
	svc := NewService(
		fb,
		comms,
		fakeLeads{},
		fakeOpportunities{},
		fakeAppointments{},
		fakeTx{},
		&domain.FixedTimeProvider{T: now},
		logger.NewNop(),
	)
	return svc, fb, comms
}

func TestService_Submit_Remark(t *testing.T) {
	svc, fb, comms := newService()

	res, err := svc.Submit(context.Background(), SubmitRequest{
		ReferenceDoctype: domain.DoctypeOpportunity,
		ReferenceName:    "OPP-00001",
		Kind:             "Remark",
		Message:          "  called, will visit next week ",
		User:             "agent@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "called, will visit next week", res.ContactRemarks)
	require.NotNil(t, res.ContactDt)
	assert.Equal(t, time.Date(2026, 10, 16, 11, 30, 0, 0, time.UTC), *res.ContactDt)
	assert.Nil(t, res.FeedbackDt)

	stored := fb.items["CF-00001"]
	assert.Equal(t, domain.PartyTypeLead, stored.FeedbackFrom)
	assert.Equal(t, "LEAD-00001", stored.PartyName)
	assert.Equal(t, "Khan Motors", stored.CustomerName)
	assert.Equal(t, "Khan Motors", stored.Title)
	assert.Equal(t, domain.FeedbackStatusPending, stored.Status)

	require.Len(t, comms.created, 1)
	assert.Equal(t, "Customer Feedback Remarks (OPP-00001)", comms.created[0].Subject)
	assert.Equal(t, "CF-00001", comms.created[0].ReferenceName)
	assert.Equal(t, "agent@example.com", comms.created[0].Sender)
	assert.Empty(t, comms.created[0].TimelineLinks)
}

func TestService_Submit_FeedbackUpdatesSameRecord(t *testing.T) {
	svc, fb, comms := newService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitRequest{
		ReferenceDoctype: domain.DoctypeAppointment,
		ReferenceName:    "APT-00001",
		Kind:             "Remark",
		Message:          "called",
	})
	require.NoError(t, err)

	res, err := svc.Submit(ctx, SubmitRequest{
		ReferenceDoctype: domain.DoctypeAppointment,
		ReferenceName:    "APT-00001",
		Kind:             domain.FeedbackKindFeedback,
		Message:          "very happy",
	})
	require.NoError(t, err)
	assert.Equal(t, "called", res.ContactRemarks)
	assert.Equal(t, "very happy", res.CustomerFeedback)
	assert.NotNil(t, res.FeedbackDt)

	require.Len(t, fb.items, 1)
	assert.Equal(t, domain.FeedbackStatusCompleted, fb.items["CF-00001"].Status)

	require.Len(t, comms.created, 2)
	feedbackComm := comms.created[1]
	assert.Equal(t, "Customer Feedback (APT-00001)", feedbackComm.Subject)
	assert.Equal(t, []domain.TimelineLink{
		{LinkDoctype: domain.DoctypeAppointment, LinkName: "APT-00001"},
		{LinkDoctype: domain.DoctypeLead, LinkName: "LEAD-00001"},
	}, feedbackComm.TimelineLinks)
}

func TestService_Submit_SameMessageWritesNoCommunication(t *testing.T) {
	svc, _, comms := newService()
	req := SubmitRequest{
		ReferenceDoctype: domain.DoctypeLead,
		ReferenceName:    "LEAD-00001",
		Kind:             domain.FeedbackKindFeedback,
		Message:          "ok",
	}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, comms.created, 1)
}

func TestService_Submit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     SubmitRequest
		wantErr error
	}{
		{
			name:    "empty message",
			req:     SubmitRequest{ReferenceDoctype: domain.DoctypeLead, ReferenceName: "LEAD-00001", Message: "  "},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing reference",
			req:     SubmitRequest{Message: "hi"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "reference does not exist",
			req:     SubmitRequest{ReferenceDoctype: domain.DoctypeOpportunity, ReferenceName: "OPP-09999", Message: "hi"},
			wantErr: ErrReferenceNotFound,
		},
		{
			name:    "unsupported reference",
			req:     SubmitRequest{ReferenceDoctype: domain.DoctypeTerritory, ReferenceName: "Lahore", Message: "hi"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "party cannot be determined",
			req:     SubmitRequest{ReferenceDoctype: domain.DoctypeAppointment, ReferenceName: "APT-00002", Message: "hi"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, comms := newService()

			_, err := svc.Submit(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, comms.created)
		})
	}
}

func TestService_Get(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Get(context.Background(), "CF-00001")
	assert.ErrorIs(t, err, ErrFeedbackNotFound)

	_, err = svc.Submit(context.Background(), SubmitRequest{
		ReferenceDoctype: domain.DoctypeLead,
		ReferenceName:    "LEAD-00001",
		Message:          "called",
	})
	require.NoError(t, err)

	f, err := svc.GetByReference(context.Background(), domain.DoctypeLead, "LEAD-00001")
	require.NoError(t, err)
	assert.Equal(t, "CF-00001", f.Name)
}
