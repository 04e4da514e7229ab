package appointments

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
	"github.com/m04kA/SMC-CRM/internal/infra/kv"
	appointmentRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointment"
	appointmentTypeRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointmenttype"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	mastersRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/masters"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
	"github.com/m04kA/SMC-CRM/pkg/logger"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

type fakeAppointments struct {
	items    map[string]*domain.Appointment
	seq      int
	reminder []string
	missed   int64
}

func (f *fakeAppointments) put(a *domain.Appointment) {
	c := *a
	f.items[a.Name] = &c
}

func (f *fakeAppointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	f.seq++
	a.Name = fmt.Sprintf("APT-%05d", f.seq)
	f.put(a)
	return a, nil
}

func (f *fakeAppointments) Update(_ context.Context, a *domain.Appointment) error {
	if _, ok := f.items[a.Name]; !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	f.put(a)
	return nil
}

func (f *fakeAppointments) UpdateStatus(_ context.Context, a *domain.Appointment) error {
	stored, ok := f.items[a.Name]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	stored.Status = a.Status
	stored.IsClosed = a.IsClosed
	stored.IsMissed = a.IsMissed
	stored.IsCheckedIn = a.IsCheckedIn
	stored.CheckInDt = a.CheckInDt
	stored.CheckInUser = a.CheckInUser
	return nil
}

func (f *fakeAppointments) GetByName(_ context.Context, name string) (*domain.Appointment, error) {
	a, ok := f.items[name]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAppointments) Delete(_ context.Context, name string) error {
	if _, ok := f.items[name]; !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	delete(f.items, name)
	return nil
}

func (f *fakeAppointments) GetInSlot(_ context.Context, start, end time.Time, filter domain.SlotFilter) ([]domain.SlotAppointment, error) {
	out := make([]domain.SlotAppointment, 0)
	for _, a := range f.items {
		if !a.DocStatus.IsSubmitted() || a.Status == domain.AppointmentStatusRescheduled {
			continue
		}
		if a.Name == filter.Exclude {
			continue
		}
		if filter.AppointmentType != "" && a.AppointmentType != filter.AppointmentType {
			continue
		}
		if filter.SalesPerson != "" && a.SalesPerson != filter.SalesPerson {
			continue
		}
		if start.Before(*a.EndDt) && end.After(*a.ScheduledDt) {
			out = append(out, domain.SlotAppointment{Name: a.Name, SalesPerson: a.SalesPerson})
		}
	}
	return out, nil
}

func (f *fakeAppointments) CountInSlot(ctx context.Context, start, end time.Time, filter domain.SlotFilter) (int, error) {
	in, err := f.GetInSlot(ctx, start, end, filter)
	return len(in), err
}

func (f *fakeAppointments) HasRescheduled(_ context.Context, name string) (bool, error) {
	for _, a := range f.items {
		if a.PreviousAppointment == name && a.DocStatus > domain.DocStatusDraft {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointments) MarkMissed(_ context.Context, _ int, _ time.Time) (int64, error) {
	return f.missed, nil
}

func (f *fakeAppointments) ListForReminder(_ context.Context, q domain.ReminderQuery) ([]string, error) {
	if len(q.AppointmentNames) == 0 {
		return f.reminder, nil
	}
	out := make([]string, 0)
	for _, name := range f.reminder {
		for _, want := range q.AppointmentNames {
			if name == want {
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (f *fakeAppointments) Events(_ context.Context, _, _ time.Time) ([]domain.AppointmentEvent, error) {
	return nil, nil
}

type fakeTypes struct{ types map[string]*domain.AppointmentType }

func (f *fakeTypes) GetByName(_ context.Context, name string) (*domain.AppointmentType, error) {
	t, ok := f.types[name]
	if !ok {
		return nil, appointmentTypeRepo.ErrAppointmentTypeNotFound
	}
	return t, nil
}

type fakeLeads struct{}

func (fakeLeads) GetByName(_ context.Context, name string) (*domain.Lead, error) {
	if name != "LEAD-00001" {
		return nil, leadRepo.ErrLeadNotFound
	}
	return &domain.Lead{Name: name, LeadName: "Ali Khan", MobileNo: "03001234567"}, nil
}

type fakeMasters struct{ sources map[string]*domain.AppointmentSource }

func (f *fakeMasters) GetAppointmentSource(_ context.Context, name string) (*domain.AppointmentSource, error) {
	s, ok := f.sources[name]
	if !ok {
		return nil, mastersRepo.ErrNotFound
	}
	return s, nil
}

type fakeSalesPersons struct{ lastQuery domain.SalesPersonQuery }

func (f *fakeSalesPersons) SearchWithAvailability(_ context.Context, q domain.SalesPersonQuery) ([]domain.SalesPersonOption, error) {
	f.lastQuery = q
	return []domain.SalesPersonOption{{Name: "Bilal", Availability: domain.SalesPersonAvailable}}, nil
}

type fakeEvents struct {
	created []*domain.Event
	synced  []string
}

func (f *fakeEvents) Create(_ context.Context, e *domain.Event) (*domain.Event, error) {
	e.Name = fmt.Sprintf("EV-%05d", len(f.created)+1)
	f.created = append(f.created, e)
	return e, nil
}

func (f *fakeEvents) UpdateTimes(_ context.Context, name string, _ time.Time, _ *time.Time) error {
	f.synced = append(f.synced, name)
	return nil
}

type fakeStatusSync struct{ refreshed []string }

func (f *fakeStatusSync) RefreshOpportunity(_ context.Context, name string, _ domain.OpportunityStatus) (*domain.Opportunity, error) {
	f.refreshed = append(f.refreshed, name)
	return &domain.Opportunity{Name: name}, nil
}

type fakeNotifier struct {
	enabled bool
	sent    []notifications.Request
}

func (f *fakeNotifier) AutomatedEnabled(_ domain.NotificationType) bool {
	return f.enabled
}

func (f *fakeNotifier) EnqueueAutomated(_ context.Context, req notifications.Request) (bool, error) {
	if !f.enabled {
		return false, nil
	}
	f.sent = append(f.sent, req)
	return true, nil
}

func (f *fakeNotifier) Counts(_ context.Context, _, _ string) ([]domain.NotificationCount, error) {
	return nil, nil
}

type fakeTimeslots struct{}

func (fakeTimeslots) Timeslots(_ context.Context, _ time.Time, _, _ string) (*domain.TimeslotsResult, error) {
	return &domain.TimeslotsResult{}, nil
}

type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// now пятница, встречи назначаются на понедельник 2026-10-19
var now = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func at(day, hour, minute int) *time.Time {
	t := time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func testDriveType() *domain.AppointmentType {
	t := &domain.AppointmentType{
		Name:                "Test Drive",
		AppointmentDuration: 30,
		NumberOfAgents:      1,
		CreateCalendarEvent: true,
		SalesPersons:        []string{"Bilal"},
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		t.Timeslots = append(t.Timeslots, domain.AppointmentTypeTimeslot{
			DayOfWeek: d,
			FromTime:  types.MustTimeString("09:00"),
			ToTime:    types.MustTimeString("17:00"),
		})
	}
	return t
}

type fixture struct {
	svc      *Service
	repo     *fakeAppointments
	apptType *domain.AppointmentType
	masters  *fakeMasters
	persons  *fakeSalesPersons
	events   *fakeEvents
	sync     *fakeStatusSync
	notifier *fakeNotifier
	redis    *miniredis.Miniredis
	settings *domain.AppointmentSettings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, now, domain.AppointmentSettings{})
}

func newFixtureAt(t *testing.T, clock time.Time, settings domain.AppointmentSettings) *fixture {
	t.Helper()
	return newFixtureWith(t, &domain.FixedTimeProvider{T: clock}, settings)
}

func newFixtureWith(t *testing.T, tp domain.TimeProvider, settings domain.AppointmentSettings) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		repo:     &fakeAppointments{items: map[string]*domain.Appointment{}},
		apptType: testDriveType(),
		masters:  &fakeMasters{sources: map[string]*domain.AppointmentSource{}},
		persons:  &fakeSalesPersons{},
		events:   &fakeEvents{},
		sync:     &fakeStatusSync{},
		notifier: &fakeNotifier{enabled: true},
		redis:    mr,
		settings: &settings,
	}
	typeRepo := &fakeTypes{types: map[string]*domain.AppointmentType{f.apptType.Name: f.apptType}}

	f.svc = NewService(f.repo, typeRepo, fakeLeads{}, f.masters, f.persons, f.events, f.sync, f.notifier,
		fakeTimeslots{}, kv.New(client, "crm:"), fakeTx{}, settings,
		tp, logger.NewNop())
	return f
}

func draft(scheduled *time.Time) *domain.Appointment {
	return &domain.Appointment{
		AppointmentType: "Test Drive",
		AppointmentFor:  domain.PartyTypeLead,
		PartyName:       "LEAD-00001",
		ScheduledDt:     scheduled,
		SalesPerson:     "Bilal",
		Opportunity:     "CRM-OPP-00001",
		Remarks:         "  wants   a  blue one ",
	}
}

func (f *fixture) submitted(t *testing.T, scheduled *time.Time) *domain.Appointment {
	t.Helper()
	created, err := f.svc.Create(context.Background(), draft(scheduled), SaveOptions{})
	require.NoError(t, err)
	res, err := f.svc.Submit(context.Background(), created.Appointment.Name, SaveOptions{User: "bilal@example.com"})
	require.NoError(t, err)
	return res.Appointment
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), draft(at(19, 10, 0)), SaveOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	a := res.Appointment
	assert.Equal(t, "APT-00001", a.Name)
	assert.Equal(t, domain.AppointmentStatusDraft, a.Status)
	assert.Equal(t, 30, a.AppointmentDuration)
	assert.Equal(t, *at(19, 10, 30), *a.EndDt)
	assert.Equal(t, "Monday", a.ScheduledDayOfWeek)
	assert.Equal(t, "Ali Khan", a.CustomerName)
	assert.Equal(t, "03001234567", a.ContactMobile)
	assert.Equal(t, "wants a blue one", a.Remarks)
}

func TestService_Create_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		appt    func() *domain.Appointment
		wantErr error
		warns   int
	}{
		{
			name: "outside timeslot is a warning",
			appt: func() *domain.Appointment { return draft(at(19, 18, 0)) },
			warns: 1,
		},
		{
			name:    "outside timeslot raises when availability is validated",
			setup:   func(f *fixture) { f.apptType.ValidateAvailability = true },
			appt:    func() *domain.Appointment { return draft(at(19, 18, 0)) },
			wantErr: domain.ErrValidation,
		},
		{
			name: "past timeslot is a warning",
			appt: func() *domain.Appointment { return draft(at(15, 10, 0)) },
			warns: 1,
		},
		{
			name: "sales person not allowed for type",
			appt: func() *domain.Appointment {
				a := draft(at(19, 10, 0))
				a.SalesPerson = "Usman"
				return a
			},
			warns: 1,
		},
		{
			name: "holiday raises when availability is validated",
			setup: func(f *fixture) {
				f.apptType.ValidateAvailability = true
				f.apptType.Holidays = []domain.Holiday{{Date: *at(19, 0, 0), Description: "Bank Holiday"}}
			},
			appt:    func() *domain.Appointment { return draft(at(19, 10, 0)) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown appointment type",
			appt: func() *domain.Appointment {
				a := draft(at(19, 10, 0))
				a.AppointmentType = "Service"
				return a
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "scheduled date is mandatory",
			appt: func() *domain.Appointment { return draft(nil) },
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown lead",
			appt: func() *domain.Appointment {
				a := draft(at(19, 10, 0))
				a.PartyName = "LEAD-99999"
				return a
			},
			wantErr: ErrLeadNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			res, err := f.svc.Create(context.Background(), tt.appt(), SaveOptions{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.repo.items)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Warnings, tt.warns)
		})
	}
}

func TestService_Create_PastTimeslotLocalTimezone(t *testing.T) {
	tp := &domain.RealTimeProvider{Location: time.FixedZone("PKT", 5*60*60)}

	tests := []struct {
		name    string
		shift   time.Duration
		wantErr bool
	}{
		{name: "hour ahead is accepted", shift: time.Hour},
		{name: "hour behind is in the past", shift: -time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWith(t, tp, domain.AppointmentSettings{})
			f.apptType.ValidatePastTimeslot = true

			scheduled := tp.Now().Add(tt.shift).Truncate(time.Minute)
			res, err := f.svc.Create(context.Background(), draft(&scheduled), SaveOptions{})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Contains(t, domain.ValidationMessage(err), "is in the past")
				return
			}
			require.NoError(t, err)
			for _, w := range res.Warnings {
				assert.NotContains(t, w, "is in the past")
			}
		})
	}
}

func TestService_Create_SlotConflicts(t *testing.T) {
	t.Run("full slot raises with slot kind", func(t *testing.T) {
		f := newFixture(t)
		f.submitted(t, at(19, 10, 0))
		f.apptType.ValidateAvailability = true

		a := draft(at(19, 10, 15))
		a.SalesPerson = ""
		_, err := f.svc.Create(context.Background(), a, SaveOptions{})
		assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("double booked sales person is a warning by default", func(t *testing.T) {
		f := newFixture(t)
		f.submitted(t, at(19, 10, 0))
		f.apptType.NumberOfAgents = 0

		res, err := f.svc.Create(context.Background(), draft(at(19, 10, 0)), SaveOptions{})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "Bilal is already assigned to another Appointment APT-00001")
	})

	t.Run("adjacent slot does not conflict", func(t *testing.T) {
		f := newFixture(t)
		f.submitted(t, at(19, 10, 0))
		f.apptType.ValidateAvailability = true
		f.apptType.ValidateSalesPersonAvailability = true

		_, err := f.svc.Create(context.Background(), draft(at(19, 10, 30)), SaveOptions{})
		assert.NoError(t, err)
	})
}

func TestService_Submit(t *testing.T) {
	f := newFixture(t)

	a := f.submitted(t, at(19, 10, 0))

	assert.Equal(t, domain.DocStatusSubmitted, a.DocStatus)
	assert.Equal(t, domain.AppointmentStatusOpen, a.Status)
	require.NotNil(t, a.ConfirmationDt)
	assert.Equal(t, now, *a.ConfirmationDt)
	assert.Equal(t, "EV-00001", f.repo.items[a.Name].CalendarEvent)
	assert.Equal(t, []string{"CRM-OPP-00001"}, f.sync.refreshed)

	require.Len(t, f.events.created, 1)
	assert.Equal(t, "Appointment with Ali Khan", f.events.created[0].Subject)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.NotificationAppointmentConfirmation, f.notifier.sent[0].NotificationType)
	assert.Equal(t, "03001234567", f.notifier.sent[0].Receiver)

	_, err := f.svc.Submit(context.Background(), a.Name, SaveOptions{})
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestService_Submit_SourceDisablesNotifications(t *testing.T) {
	f := newFixture(t)
	f.masters.sources["Walk In"] = &domain.AppointmentSource{Name: "Walk In", DisableAutomatedNotifications: true}

	a := draft(at(19, 10, 0))
	a.AppointmentSource = "Walk In"
	created, err := f.svc.Create(context.Background(), a, SaveOptions{})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), created.Appointment.Name, SaveOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestService_Submit_SalesPersonMandatory(t *testing.T) {
	f := newFixture(t)
	f.apptType.SalesPersonMandatory = true

	a := draft(at(19, 10, 0))
	a.SalesPerson = ""
	created, err := f.svc.Create(context.Background(), a, SaveOptions{})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), created.Appointment.Name, SaveOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.DocStatusDraft, f.repo.items[created.Appointment.Name].DocStatus)
}

func TestService_Reschedule(t *testing.T) {
	f := newFixture(t)
	first := f.submitted(t, at(19, 10, 0))

	next, err := f.svc.Reschedule(context.Background(), first.Name)
	require.NoError(t, err)
	assert.Equal(t, first.Name, next.PreviousAppointment)
	require.NotNil(t, next.PreviousAppointmentDt)
	assert.Equal(t, *first.ScheduledDt, *next.PreviousAppointmentDt)
	assert.Nil(t, next.ScheduledDt)

	next.ScheduledDt = at(20, 11, 0)
	created, err := f.svc.Create(context.Background(), next, SaveOptions{})
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), created.Appointment.Name, SaveOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.AppointmentStatusRescheduled, f.repo.items[first.Name].Status)
}

func TestService_Create_PreviousAppointmentChecks(t *testing.T) {
	f := newFixture(t)
	prev := f.submitted(t, at(19, 10, 0))
	_, err := f.svc.UpdateStatus(context.Background(), prev.Name, domain.AppointmentStatusClosed, SaveOptions{})
	require.NoError(t, err)

	a := draft(at(20, 10, 0))
	a.PreviousAppointment = prev.Name
	_, err = f.svc.Create(context.Background(), a, SaveOptions{})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Only Open and Missed appointments can be rescheduled")

	a = draft(at(20, 10, 0))
	a.PreviousAppointment = "APT-99999"
	_, err = f.svc.Create(context.Background(), a, SaveOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	a := f.submitted(t, at(19, 10, 0))

	cancelled, err := f.svc.Cancel(context.Background(), a.Name, SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.DocStatusCancelled, f.repo.items[a.Name].DocStatus)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, domain.NotificationAppointmentCancellation, f.notifier.sent[1].NotificationType)

	_, err = f.svc.Cancel(context.Background(), a.Name, SaveOptions{})
	assert.ErrorIs(t, err, ErrNotSubmitted)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	a := f.submitted(t, at(19, 10, 0))

	got, err := f.svc.UpdateStatus(context.Background(), a.Name, domain.AppointmentStatusCheckedIn, SaveOptions{User: "desk@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCheckedIn, got.Status)
	assert.Equal(t, "desk@example.com", f.repo.items[a.Name].CheckInUser)

	_, err = f.svc.UpdateStatus(context.Background(), a.Name, domain.AppointmentStatusCancelled, SaveOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateStatus(context.Background(), "APT-99999", domain.AppointmentStatusOpen, SaveOptions{})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestService_UpdateAfterSubmit(t *testing.T) {
	f := newFixture(t)
	a := f.submitted(t, at(19, 10, 0))

	remarks := "called   to confirm"
	res, err := f.svc.UpdateAfterSubmit(context.Background(), a.Name, AfterSubmitChanges{Remarks: &remarks}, SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "called to confirm", res.Appointment.Remarks)

	_, err = f.svc.UpdateStatus(context.Background(), a.Name, domain.AppointmentStatusClosed, SaveOptions{})
	require.NoError(t, err)

	voc := "loved it"
	_, err = f.svc.UpdateAfterSubmit(context.Background(), a.Name, AfterSubmitChanges{VoiceOfCustomer: &voc}, SaveOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), draft(at(19, 10, 0)), SaveOptions{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.Appointment.Name, SaveOptions{}))
	assert.Empty(t, f.repo.items)
	assert.Equal(t, []string{"CRM-OPP-00001"}, f.sync.refreshed)

	a := f.submitted(t, at(19, 10, 0))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), a.Name, SaveOptions{}), ErrNotDraft)
}

func TestService_Get(t *testing.T) {
	f := newFixture(t)
	a := f.submitted(t, at(19, 10, 0))

	details, err := f.svc.Get(context.Background(), a.Name)
	require.NoError(t, err)
	assert.True(t, details.CanNotify[domain.NotificationAppointmentConfirmation])
	assert.True(t, details.CanNotify[domain.NotificationAppointmentReminder])
	assert.False(t, details.CanNotify[domain.NotificationAppointmentCancellation])
	assert.NotNil(t, details.Timeslots)
}

func TestService_SalesPersonQuery(t *testing.T) {
	f := newFixture(t)
	start := *at(19, 10, 0)

	_, err := f.svc.SalesPersonQuery(context.Background(), "Test Drive", domain.SalesPersonQuery{Txt: "bi", Start: &start})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bilal"}, f.persons.lastQuery.Allowed)
	assert.Equal(t, uint64(domain.DefaultPageLength), f.persons.lastQuery.Limit)
	require.NotNil(t, f.persons.lastQuery.End)
	assert.Equal(t, start, *f.persons.lastQuery.End)
}

func TestService_SendReminders(t *testing.T) {
	settings := domain.AppointmentSettings{ReminderDaysBefore: 1, ReminderTime: types.MustTimeString("08:00")}

	t.Run("before reminder time", func(t *testing.T) {
		f := newFixtureAt(t, time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC), settings)
		f.repo.reminder = []string{"APT-00001"}

		n, err := f.svc.SendReminders(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.False(t, f.redis.Exists("crm:"+kv.KeyReminderLastSentDate))
	})

	t.Run("sends once per day", func(t *testing.T) {
		f := newFixture(t)
		a := f.submitted(t, at(19, 10, 0))

		f2 := newFixtureAt(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), settings)
		f2.repo.put(a)
		f2.repo.reminder = []string{a.Name}

		n, err := f2.svc.SendReminders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, f2.notifier.sent, 1)
		assert.Equal(t, domain.NotificationAppointmentReminder, f2.notifier.sent[0].NotificationType)

		stored, err := f2.redis.Get("crm:" + kv.KeyReminderLastSentDate)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-18", stored)

		n, err = f2.svc.SendReminders(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixtureAt(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), settings)
		f.notifier.enabled = false
		n, err := f.svc.SendReminders(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestService_ReminderSchedule(t *testing.T) {
	settings := domain.AppointmentSettings{ReminderDaysBefore: 1, ReminderTime: types.MustTimeString("08:00")}
	f := newFixtureAt(t, now, settings)
	a := f.submitted(t, at(19, 10, 0))
	f.repo.reminder = []string{a.Name}

	dt, err := f.svc.ReminderSchedule(context.Background(), a)
	require.NoError(t, err)
	require.NotNil(t, dt)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC), *dt)

	f.repo.reminder = nil
	dt, err = f.svc.ReminderSchedule(context.Background(), a)
	require.NoError(t, err)
	assert.Nil(t, dt)
}

func TestService_AutoMarkMissed(t *testing.T) {
	f := newFixture(t)
	f.repo.missed = 3

	n, err := f.svc.AutoMarkMissed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f = newFixtureAt(t, now, domain.AppointmentSettings{AutoMarkMissedDays: 2})
	f.repo.missed = 3
	n, err = f.svc.AutoMarkMissed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
