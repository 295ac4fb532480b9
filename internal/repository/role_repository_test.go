package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

func TestRoleFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow("r1", "Admin")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM roles WHERE id = $1 LIMIT 1")).
		WithArgs("r1").
		WillReturnRows(rows)

	role, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM roles WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestRoleCountUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role_id = $1")).
		WithArgs("r1").
		WillReturnRows(rows)

	count, err := repo.CountUsers(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec("INSERT INTO roles").WillReturnResult(sqlmock.NewResult(1, 1))

	role := &models.Role{Name: "Mentor"}
	err := repo.Create(context.Background(), db, role)
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM roles WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), db, "r1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
