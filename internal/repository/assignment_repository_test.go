package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

func TestAssignmentExistsPair(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM assignments WHERE user_id = $1 AND case_id = $2)")).
		WithArgs("u1", "c1").
		WillReturnRows(rows)

	exists, err := repo.ExistsPair(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Assignment{UserID: "u1", CaseID: "c1"}
	err := repo.Create(context.Background(), db, a)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.AssignedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "case_id", "assigned_at"}).
		AddRow("a1", "u1", "c1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, case_id, assigned_at FROM assignments WHERE 1=1 AND user_id = $1 ORDER BY assigned_at DESC LIMIT 100 OFFSET 0")).
		WithArgs("u1").
		WillReturnRows(rows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE 1=1 AND user_id = $1")).
		WithArgs("u1").
		WillReturnRows(countRows)

	assignments, total, err := repo.List(context.Background(), models.AssignmentFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
