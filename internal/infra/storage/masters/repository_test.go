package masters

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

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

func TestRepository_EnsureName(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO industry_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING")).
		WithArgs("Automotive").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO industry_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING")).
		WithArgs("Automotive").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.EnsureName(context.Background(), TableIndustryTypes, "Automotive")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.EnsureName(context.Background(), TableIndustryTypes, "Automotive")
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestRepository_EnsureName_UnknownTable(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.EnsureName(context.Background(), "users; DROP TABLE leads", "x")

	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestRepository_GetOpportunityType(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM opportunity_types WHERE name = $1")).
		WithArgs("Sales").
		WillReturnRows(sqlmock.NewRows([]string{"name", "description", "default_appointment_type"}).
			AddRow("Sales", "", "Test Drive"))

	ot, err := repo.GetOpportunityType(context.Background(), "Sales")

	require.NoError(t, err)
	assert.Equal(t, "Test Drive", ot.DefaultAppointmentType)
}

func TestRepository_GetAppointmentSource_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointment_sources WHERE name = $1")).
		WithArgs("Walk In").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAppointmentSource(context.Background(), "Walk In")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_EnsureLeadSource(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lead_sources (name,details) VALUES ($1,$2) ON CONFLICT (name) DO NOTHING")).
		WithArgs("Campaign", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.EnsureLeadSource(context.Background(), domain.LeadSource{Name: "Campaign"})

	require.NoError(t, err)
	assert.True(t, inserted)
}
