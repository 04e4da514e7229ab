package make_opportunity_from_lead_form

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
	"github.com/m04kA/SMC-CRM/internal/service/opportunities"
	"github.com/m04kA/SMC-CRM/pkg/logger"
	"github.com/m04kA/SMC-CRM/pkg/ratelimit"
)

var now = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type fakeLeads struct {
	byEmail map[string]*domain.Lead
	created []*domain.Lead
	updated []*domain.Lead
}

func (f *fakeLeads) FindByEmail(_ context.Context, email string) (*domain.Lead, error) {
	if l, ok := f.byEmail[email]; ok {
		c := *l
		return &c, nil
	}
	return nil, leadRepo.ErrLeadNotFound
}

func (f *fakeLeads) Create(_ context.Context, lead *domain.Lead, opts leads.SaveOptions) (*domain.Lead, error) {
	if !opts.IgnoreMandatory {
		return nil, fmt.Errorf("mandatory check not skipped")
	}
	lead.Name = fmt.Sprintf("LEAD-%05d", len(f.created)+1)
	f.created = append(f.created, lead)
	return lead, nil
}

func (f *fakeLeads) Update(_ context.Context, lead *domain.Lead, _ leads.SaveOptions) (*domain.Lead, error) {
	f.updated = append(f.updated, lead)
	return lead, nil
}

type fakeOpportunities struct {
	created []*domain.Opportunity
}

func (f *fakeOpportunities) Create(_ context.Context, opp *domain.Opportunity, _ opportunities.SaveOptions) (*domain.Opportunity, error) {
	opp.Name = fmt.Sprintf("OPP-%05d", len(f.created)+1)
	f.created = append(f.created, opp)
	return opp, nil
}

type fakeCommunications struct {
	created []*domain.Communication
}

func (f *fakeCommunications) Create(_ context.Context, c *domain.Communication) (*domain.Communication, error) {
	f.created = append(f.created, c)
	return c, nil
}

type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	uc    *UseCase
	leads *fakeLeads
	opps  *fakeOpportunities
	comms *fakeCommunications
}

func newFixture(t *testing.T, limit int, existing ...*domain.Lead) *fixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := ratelimit.New(client, ratelimit.Config{Limit: limit, Window: time.Hour, Prefix: "web_form:"})
	require.NoError(t, err)

	f := &fixture{
		leads: &fakeLeads{byEmail: map[string]*domain.Lead{}},
		opps:  &fakeOpportunities{},
		comms: &fakeCommunications{},
	}
	for _, l := range existing {
		f.leads.byEmail[l.EmailID] = l
	}

	f.uc = NewUseCase(
		limiter,
		f.leads,
		f.leads,
		f.opps,
		f.comms,
		fakeTx{},
		&domain.FixedTimeProvider{T: now},
		Settings{
			DefaultLeadSource: "Website",
			QueryOptions:      map[string]string{"Test Drive": "Sales"},
		},
		logger.NewNop(),
	)
	return f
}

func TestUseCase_Execute_NewLead(t *testing.T) {
	f := newFixture(t, 10)

	resp, err := f.uc.Execute(context.Background(), Request{
		ClientIP: "10.0.0.1",
		Subject:  "Test Drive",
		Message:  "I want to drive the new model",
		Sender:   " John.Doe@Example.com ",
		MobileNo: "03001234567",
	})
	require.NoError(t, err)
	assert.Equal(t, ResultOK, resp.Result)
	assert.True(t, resp.LeadCreated)
	assert.Equal(t, "LEAD-00001", resp.Lead)
	assert.Equal(t, "OPP-00001", resp.Opportunity)

	require.Len(t, f.leads.created, 1)
	lead := f.leads.created[0]
	assert.Equal(t, "john.doe@example.com", lead.EmailID)
	assert.Equal(t, "John.Doe", lead.LeadName)
	assert.Equal(t, "Website", lead.Source)
	assert.Equal(t, "03001234567", lead.MobileNo)

	require.Len(t, f.opps.created, 1)
	opp := f.opps.created[0]
	assert.Equal(t, domain.PartyTypeLead, opp.OpportunityFrom)
	assert.Equal(t, "LEAD-00001", opp.PartyName)
	assert.Equal(t, domain.OpportunityStatusOpen, opp.Status)
	assert.Equal(t, "Sales", opp.OpportunityType)
	assert.Equal(t, "john.doe@example.com", opp.ContactEmail)

	require.Len(t, f.comms.created, 1)
	comm := f.comms.created[0]
	assert.Equal(t, "Test Drive", comm.Subject)
	assert.Equal(t, domain.CommunicationReceived, comm.SentOrReceived)
	assert.Equal(t, "OPP-00001", comm.ReferenceName)
	assert.Equal(t, []domain.TimelineLink{{LinkDoctype: domain.DoctypeLead, LinkName: "LEAD-00001"}}, comm.TimelineLinks)
}

func TestUseCase_Execute_ExistingLead(t *testing.T) {
	existing := &domain.Lead{Name: "LEAD-00007", LeadName: "Ali", EmailID: "ali@example.com", MobileNo: "03001111111"}
	f := newFixture(t, 10, existing)

	resp, err := f.uc.Execute(context.Background(), Request{
		ClientIP: "10.0.0.1",
		Sender:   "ali@example.com",
		FullName: "Ali Khan",
		MobileNo: "03002222222",
	})
	require.NoError(t, err)
	assert.False(t, resp.LeadCreated)
	assert.Equal(t, "LEAD-00007", resp.Lead)
	assert.Empty(t, f.leads.created)

	require.Len(t, f.leads.updated, 1)
	updated := f.leads.updated[0]
	assert.Equal(t, "Ali Khan", updated.LeadName)
	assert.Equal(t, "03002222222", updated.MobileNo)
	assert.Equal(t, "03001111111", updated.MobileNo2)

	require.Len(t, f.opps.created, 1)
	assert.Empty(t, f.opps.created[0].OpportunityType)
	assert.Equal(t, DefaultSubject, f.comms.created[0].Subject)
}

func TestUseCase_Execute_UnchangedLeadIsNotSaved(t *testing.T) {
	existing := &domain.Lead{Name: "LEAD-00007", LeadName: "Ali", EmailID: "ali@example.com"}
	f := newFixture(t, 10, existing)

	_, err := f.uc.Execute(context.Background(), Request{ClientIP: "10.0.0.1", Sender: "ali@example.com"})
	require.NoError(t, err)
	assert.Empty(t, f.leads.updated)
}

func TestUseCase_Execute_MobileNumbers(t *testing.T) {
	tests := []struct {
		name        string
		oldMobile   string
		newMobile   string
		wantUpdated bool
		wantMobile  string
		wantMobile2 string
	}{
		{name: "lead without mobile is left as is", newMobile: "03002222222"},
		{name: "same number", oldMobile: "03001111111", newMobile: "03001111111"},
		{name: "new number replaces old one", oldMobile: "03001111111", newMobile: "03002222222",
			wantUpdated: true, wantMobile: "03002222222", wantMobile2: "03001111111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &domain.Lead{Name: "LEAD-00007", LeadName: "Ali", EmailID: "ali@example.com", MobileNo: tt.oldMobile}
			f := newFixture(t, 10, existing)

			_, err := f.uc.Execute(context.Background(), Request{ClientIP: "10.0.0.1", Sender: "ali@example.com", MobileNo: tt.newMobile})
			require.NoError(t, err)

			if !tt.wantUpdated {
				assert.Empty(t, f.leads.updated)
				return
			}
			require.Len(t, f.leads.updated, 1)
			assert.Equal(t, tt.wantMobile, f.leads.updated[0].MobileNo)
			assert.Equal(t, tt.wantMobile2, f.leads.updated[0].MobileNo2)
		})
	}
}

func TestUseCase_Execute_InvalidSender(t *testing.T) {
	tests := []struct {
		name   string
		sender string
	}{
		{name: "empty", sender: ""},
		{name: "malformed", sender: "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10)

			_, err := f.uc.Execute(context.Background(), Request{ClientIP: "10.0.0.1", Sender: tt.sender})
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, f.opps.created)
		})
	}
}

func TestUseCase_Execute_RateLimited(t *testing.T) {
	f := newFixture(t, 2)
	req := Request{ClientIP: "10.0.0.1", Sender: "ali@example.com"}

	for i := 0; i < 2; i++ {
		_, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
	}

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrRateLimited)

	req.ClientIP = "10.0.0.2"
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "John.Doe", nameFromEmail("john.doe@example.com"))
	assert.Equal(t, "Ali_Khan2", nameFromEmail("ALI_KHAN2@example.com"))
}
