package helper

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// GivenUniqueID returns a fresh time-ordered UUID for arranging test rows.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

// GivenMockedSQLDB returns a sql.DB backed by go-sqlmock.
// Unmet expectations fail the test at cleanup.
func GivenMockedSQLDB(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "error creating the sql mock")

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unmet sql expectations")
		_ = db.Close()
	})

	return db, mock
}

// GivenMockedSQLXDB returns a sqlx.DB backed by go-sqlmock.
func GivenMockedSQLXDB(t testing.TB) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock := GivenMockedSQLDB(t)

	return sqlx.NewDb(db, "sqlmock"), mock
}
