package setup

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/logger"
	"github.com/m04kA/SMC-CRM/pkg/txmanager"
)

func TestMigrator_Up(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	files := fstest.MapFS{
		"001_init.sql":    {Data: []byte("CREATE TABLE leads (name TEXT)")},
		"002_indexes.sql": {Data: []byte("CREATE INDEX leads_name ON leads (name)")},
		"README.md":       {Data: []byte("not a migration")},
	}
	m := NewMigrator(wrapped, txmanager.NewTransactionManager(wrapped), files, logger.NewNop())

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_init.sql"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX leads_name")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("002_indexes.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"002_indexes.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_Up_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	files := fstest.MapFS{"001_init.sql": {Data: []byte("CREATE TABLE broken (")}}
	m := NewMigrator(wrapped, txmanager.NewTransactionManager(wrapped), files, logger.NewNop())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken (")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	applied, err := m.Up(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
