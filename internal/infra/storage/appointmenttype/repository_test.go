package appointmenttype

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
	"github.com/m04kA/SMC-CRM/pkg/types"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	holiday := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointment_types")).
		WillReturnRows(sqlmock.NewRows([]string{"modified"}).AddRow(now))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO appointment_type_timeslots (appointment_type,day_of_week,from_time,to_time) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)",
	)).
		WithArgs("Service", 1, "09:00", "13:00", "Service", 2, "09:00", "13:00").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointment_type_holidays")).
		WithArgs("Service", holiday, "Christmas").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), &domain.AppointmentType{
		Name:                "Service",
		AppointmentDuration: 30,
		Timeslots: []domain.AppointmentTypeTimeslot{
			{DayOfWeek: time.Monday, FromTime: types.MustTimeString("09:00"), ToTime: types.MustTimeString("13:00")},
			{DayOfWeek: time.Tuesday, FromTime: types.MustTimeString("09:00"), ToTime: types.MustTimeString("13:00")},
		},
		Holidays: []domain.Holiday{{Date: holiday, Description: "Christmas"}},
	})

	require.NoError(t, err)
	assert.Equal(t, now, created.Modified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByName(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointment_types WHERE name = $1")).
		WithArgs("Service").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("Service", 30, 2, 14, true, true, false, false, true, false, "{SP-Ahmed,SP-Sara}", now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointment_type_timeslots WHERE appointment_type = $1")).
		WithArgs("Service").
		WillReturnRows(sqlmock.NewRows([]string{"day_of_week", "from_time", "to_time"}).
			AddRow(1, "09:00:00", "13:00:00").
			AddRow(1, "14:00:00", "18:00:00"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointment_type_holidays WHERE appointment_type = $1")).
		WithArgs("Service").
		WillReturnRows(sqlmock.NewRows([]string{"holiday_date", "description"}))

	at, err := repo.GetByName(context.Background(), "Service")

	require.NoError(t, err)
	assert.Equal(t, 2, at.NumberOfAgents)
	assert.Equal(t, []string{"SP-Ahmed", "SP-Sara"}, at.SalesPersons)
	require.Len(t, at.Timeslots, 2)
	assert.Equal(t, time.Monday, at.Timeslots[1].DayOfWeek)
	assert.Equal(t, "14:00", at.Timeslots[1].FromTime.String())
	assert.Empty(t, at.Holidays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByName_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointment_types WHERE name = $1")).
		WithArgs("Unknown").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "Unknown")

	assert.ErrorIs(t, err, ErrAppointmentTypeNotFound)
}

func TestRepository_Update_ReplacesSchedule(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE appointment_types SET")).
		WillReturnRows(sqlmock.NewRows([]string{"modified"}).AddRow(now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointment_type_timeslots WHERE appointment_type = $1")).
		WithArgs("Service").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointment_type_holidays WHERE appointment_type = $1")).
		WithArgs("Service").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.AppointmentType{Name: "Service"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
