package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
	}{
		{name: "sqlite schema", dialect: DialectSQLite},
		{name: "postgres schema", dialect: DialectPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = mockDB.Close() }()

			mock.ExpectExec("CREATE TABLE IF NOT EXISTS notification_records").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_notification_records_notified_at").
				WillReturnResult(sqlmock.NewResult(0, 0))

			require.NoError(t, MigrateUp(mockDB, tt.dialect))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMigrateUp_TableError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS notification_records").
		WillReturnError(errors.New("permission denied"))

	assert.Error(t, MigrateUp(mockDB, DialectSQLite))
}

func TestMigrateDown(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	mock.ExpectExec("DROP INDEX IF EXISTS idx_notification_records_notified_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS notification_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, MigrateDown(mockDB))
	assert.NoError(t, mock.ExpectationsWereMet())
}
