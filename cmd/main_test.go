package main

import (
	"testing"

	"github.com/paisatrack/paisa-server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearDatabaseDropsAllTables(t *testing.T) {
	db := testutil.NewTestDB(t)

	require.NoError(t, clearDatabase(db))

	for _, table := range []string{"transactions", "categories", "auth_tokens", "password_reset_tokens", "users"} {
		assert.False(t, db.Migrator().HasTable(table), "table %s should be dropped", table)
	}
}

func TestClearDatabaseReturnsDropError(t *testing.T) {
	db := testutil.NewTestDB(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Error(t, clearDatabase(db))
}
