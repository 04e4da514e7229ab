package communication

import (
	"context"
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

func TestRepository_Create_WithLinks(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO communications")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "communication_date"}).AddRow(7, now))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO communication_links (communication_id,link_doctype,link_name) VALUES ($1,$2,$3),($4,$5,$6)",
	)).
		WithArgs(7, domain.DoctypeOpportunity, "OPP-00001", 7, domain.DoctypeLead, "LEAD-00001").
		WillReturnResult(sqlmock.NewResult(0, 2))

	c := &domain.Communication{
		ReferenceDoctype:  domain.DoctypeCustomerFeedback,
		ReferenceName:     "CF-00001",
		CommunicationType: domain.CommunicationTypeFeedback,
		Content:           "Great service",
	}
	c.AddLink(domain.DoctypeOpportunity, "OPP-00001")
	c.AddLink(domain.DoctypeLead, "LEAD-00001")

	created, err := repo.Create(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, now, created.CommunicationDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasNonAutomated(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS ( SELECT 1 FROM communications WHERE reference_doctype = $1 AND reference_name = $2 AND communication_type <> $3 )",
	)).
		WithArgs(domain.DoctypeOpportunity, "OPP-00001", domain.CommunicationTypeAutomatedMessage).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasNonAutomated(context.Background(), domain.DoctypeOpportunity, "OPP-00001")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_ListForTimeline(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("OR id IN (SELECT l.communication_id FROM communication_links l WHERE l.link_doctype = $3 AND l.link_name = $4)")).
		WithArgs(domain.DoctypeLead, "LEAD-00001", domain.DoctypeLead, "LEAD-00001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference_doctype", "reference_name", "communication_type", "communication_medium", "subject",
			"content", "sender", "sender_full_name", "phone_no", "sent_or_received", "communication_date",
		}).AddRow(3, domain.DoctypeCustomerFeedback, "CF-00001", "Feedback", "", "Customer Feedback (OPP-00001)",
			"Great service", "admin", "", "", "Received", now))

	list, err := repo.ListForTimeline(context.Background(), domain.DoctypeLead, "LEAD-00001")

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Great service", list[0].Content)
}
