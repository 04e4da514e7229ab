package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("name").
		From("leads").
		Where(squirrel.Eq{"status": "Open"}).
		Where(ILike("email_id", "acme")).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM leads WHERE status = $1 AND email_id ILIKE $2", query)
	assert.Equal(t, []interface{}{"Open", "%acme%"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Update("appointments").
		Set("status", "Missed").
		Where(squirrel.Eq{"name": "APT-00001"}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE appointments SET status = $1 WHERE name = $2", query)
	assert.Len(t, args, 2)
}
