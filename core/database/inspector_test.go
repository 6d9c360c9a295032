package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE run_records (id TEXT PRIMARY KEY, state TEXT NOT NULL, added INTEGER)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "run_records")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "text", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "NO", colMap["state"].Null)
	assert.Equal(t, "integer", colMap["added"].Type)

	// PRAGMA table_info returns no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE run_records (id TEXT PRIMARY KEY, state TEXT)").Error)

	missing, err := MissingColumns(db, "run_records", []string{"id", "State", "summary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"summary"}, missing)
}
