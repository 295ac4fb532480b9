package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestTransactCommit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	runner := NewTxRunner(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cases WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := runner.Transact(context.Background(), func(ex sqlx.ExtContext) error {
		_, execErr := ex.ExecContext(context.Background(), "DELETE FROM cases WHERE id = $1", "c1")
		return execErr
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactRollbackKeepsError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	runner := NewTxRunner(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	failure := errors.New("audit write failed")
	err := runner.Transact(context.Background(), func(ex sqlx.ExtContext) error {
		return failure
	})
	require.Error(t, err)
	assert.Equal(t, failure, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampRange(t *testing.T) {
	skip, limit := clampRange(-5, 0)
	assert.Equal(t, 0, skip)
	assert.Equal(t, 100, limit)

	skip, limit = clampRange(40, 5000)
	assert.Equal(t, 40, skip)
	assert.Equal(t, 100, limit)

	skip, limit = clampRange(10, 25)
	assert.Equal(t, 10, skip)
	assert.Equal(t, 25, limit)
}
