package appointment

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func appointmentRow(name string, start time.Time) *sqlmock.Rows {
	end := start.Add(30 * time.Minute)
	date := domain.DateOnly(start)
	return sqlmock.NewRows(columns).AddRow(
		name, 1, "Open", "Service", "Lead", "LEAD-00001", "Ali Khan",
		"", "", "", "", "Mr Ali Khan", "ali@example.com", "03001234567", "", "", "",
		"", "",
		start, end, date, "10:30:00", "Monday", 30,
		"SP-Ahmed", "OPP-00001", "", nil, "", "Phone",
		false, false, false, nil, "", start.Add(-48*time.Hour), "EV-00001",
		"", "", "", "", "", "admin", start, start,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "created_at", "modified"}).AddRow("APT-00001", now, now))

	a, err := repo.Create(context.Background(), &domain.Appointment{
		AppointmentFor: domain.PartyTypeLead,
		PartyName:      "LEAD-00001",
		Status:         domain.AppointmentStatusDraft,
		Owner:          "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, "APT-00001", a.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByName(t *testing.T) {
	repo, mock := newRepo(t)
	start := time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE name = $1")).
		WithArgs("APT-00001").
		WillReturnRows(appointmentRow("APT-00001", start))

	a, err := repo.GetByName(context.Background(), "APT-00001")

	require.NoError(t, err)
	assert.Equal(t, domain.DocStatusSubmitted, a.DocStatus)
	assert.Equal(t, domain.AppointmentStatusOpen, a.Status)
	require.NotNil(t, a.EndDt)
	assert.Equal(t, start.Add(30*time.Minute), *a.EndDt)
	assert.Equal(t, "10:30", a.ScheduledTime.String())
	assert.Nil(t, a.PreviousAppointmentDt)
	assert.Nil(t, a.CheckInDt)
	require.NotNil(t, a.ConfirmationDt)
	assert.Equal(t, "Mr Ali Khan", a.ContactDisplay)
}

func TestRepository_GetByName_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE name = $1")).
		WithArgs("APT-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "APT-404")

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepository_GetInSlot(t *testing.T) {
	repo, mock := newRepo(t)
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT name, sales_person FROM appointments WHERE docstatus = $1 AND status <> $2 AND end_dt > $3 AND scheduled_dt < $4 AND appointment_type = $5 AND name <> $6",
	)).
		WithArgs(domain.DocStatusSubmitted, domain.AppointmentStatusRescheduled, start, end, "Service", "APT-00003").
		WillReturnRows(sqlmock.NewRows([]string{"name", "sales_person"}).
			AddRow("APT-00001", "SP-Ahmed").
			AddRow("APT-00002", ""))

	res, err := repo.GetInSlot(context.Background(), start, end, domain.SlotFilter{
		AppointmentType: "Service",
		Exclude:         "APT-00003",
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.SlotAppointment{
		{Name: "APT-00001", SalesPerson: "SP-Ahmed"},
		{Name: "APT-00002"},
	}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountInSlot(t *testing.T) {
	repo, mock := newRepo(t)
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE docstatus = $1")).
		WithArgs(domain.DocStatusSubmitted, domain.AppointmentStatusRescheduled, start, end, "SP-Ahmed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountInSlot(context.Background(), start, end, domain.SlotFilter{SalesPerson: "SP-Ahmed"})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRepository_HasRescheduled(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS ( SELECT 1 FROM appointments WHERE (previous_appointment = $1 AND docstatus > $2) )",
	)).
		WithArgs("APT-00001", domain.DocStatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasRescheduled(context.Background(), "APT-00001")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_MarkMissed(t *testing.T) {
	repo, mock := newRepo(t)
	today := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, modified = NOW() WHERE docstatus = $2 AND status = $3 AND scheduled_date <= $4")).
		WithArgs(domain.AppointmentStatusMissed, domain.DocStatusSubmitted, domain.AppointmentStatusOpen,
			time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkMissed(context.Background(), 3, today)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRepository_ListForReminder(t *testing.T) {
	repo, mock := newRepo(t)
	q := domain.ReminderQuery{
		AppointmentDate:  time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		ReminderDate:     time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		ReminderDt:       time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC),
		Now:              time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
		RequiredMinutes:  120,
		AppointmentNames: []string{"APT-00001"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN notification_counts n ON n.reference_doctype = $1")).
		WithArgs(domain.DoctypeAppointment, domain.NotificationAppointmentReminder, domain.NotificationMediumSMS,
			domain.DocStatusSubmitted, domain.AppointmentStatusOpen, q.AppointmentDate,
			q.ReminderDt, q.Now, q.ReminderDt, 120, q.ReminderDate, "APT-00001").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("APT-00001"))

	names, err := repo.ListForReminder(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, []string{"APT-00001"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Events(t *testing.T) {
	repo, mock := newRepo(t)
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE scheduled_dt IS NOT NULL")).
		WithArgs(start, end, domain.DocStatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"name", "customer_name", "status", "scheduled_dt", "end_dt"}).
			AddRow("APT-00001", "Ali Khan", "Open", at, at.Add(30*time.Minute)))

	events, err := repo.Events(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Ali Khan", events[0].CustomerName)
	assert.Equal(t, domain.AppointmentStatusOpen, events[0].Status)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE name = $1")).
		WithArgs("APT-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "APT-404")

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
