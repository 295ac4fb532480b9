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

func TestCaseFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "intake_data", "consent", "entrepreneur_id", "convocatoria_id", "state_id", "created_at"}).
		AddRow("c1", "Solar kiosk", nil, []byte(`{"sector":"energy"}`), true, "e1", nil, "s1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, intake_data, consent, entrepreneur_id, convocatoria_id, state_id, created_at FROM cases WHERE id = $1 LIMIT 1")).
		WithArgs("c1").
		WillReturnRows(rows)

	c, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Solar kiosk", c.Name)
	assert.True(t, c.Consent)
	assert.Nil(t, c.ConvocatoriaID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseListAssignedScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "intake_data", "consent", "state_name", "case_type", "entrepreneur_name", "convocatoria_name", "created_at"}).
		AddRow("c1", "Solar kiosk", nil, nil, true, "In Review", "Application", "Ana Perez", nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("EXISTS (SELECT 1 FROM assignments a WHERE a.case_id = c.id AND a.user_id = $1)")).
		WithArgs("u1").
		WillReturnRows(rows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("u1").
		WillReturnRows(countRows)

	summaries, total, err := repo.List(context.Background(), models.CaseFilter{AssignedUserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "In Review", summaries[0].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseListByStateAndType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "intake_data", "consent", "state_name", "case_type", "entrepreneur_name", "convocatoria_name", "created_at"}).
		AddRow("c2", "Compost app", nil, nil, false, "Accepted", "Project", "Luis Gomez", "2026-1", now)
	mock.ExpectQuery(regexp.QuoteMeta("s.name = $1 AND s.case_type = $2")).
		WithArgs("Accepted", "Project").
		WillReturnRows(rows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("Accepted", "Project").
		WillReturnRows(countRows)

	summaries, total, err := repo.List(context.Background(), models.CaseFilter{StateName: "Accepted", CaseType: "Project"})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.CaseTypeProject, summaries[0].CaseType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseUpdateState(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cases SET state_id = $2 WHERE id = $1")).
		WithArgs("c1", "s2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateState(context.Background(), db, "c1", "s2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCaseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cases WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), db, "c1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
