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

func TestAuditCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_records").WillReturnResult(sqlmock.NewResult(1, 1))

	rec := &models.AuditRecord{Action: models.AuditActionLogin, UserID: "u1"}
	err := repo.Create(context.Background(), db, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditListActionFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	now := time.Now()
	old := "Received (Application)"
	rows := sqlmock.NewRows([]string{"id", "action", "old_value", "new_value", "user_id", "case_id", "created_at"}).
		AddRow("a1", models.AuditActionStateChange, old, "Accepted (Application)", "u1", "c1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, action, old_value, new_value, user_id, case_id, created_at FROM audit_records WHERE 1=1 AND LOWER(action) LIKE $1 ORDER BY created_at DESC LIMIT 100 OFFSET 0")).
		WithArgs("%state%").
		WillReturnRows(rows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_records WHERE 1=1 AND LOWER(action) LIKE $1")).
		WithArgs("%state%").
		WillReturnRows(countRows)

	records, total, err := repo.List(context.Background(), models.AuditFilter{Action: "State"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.AuditActionStateChange, records[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditListByCase(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "action", "old_value", "new_value", "user_id", "case_id", "created_at"}).
		AddRow("a1", models.AuditActionCaseCreated, nil, "{}", "u1", "c1", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_records WHERE 1=1 AND case_id = $1 ORDER BY created_at DESC")).
		WithArgs("c1").
		WillReturnRows(rows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_records WHERE 1=1 AND case_id = $1")).
		WithArgs("c1").
		WillReturnRows(countRows)

	records, total, err := repo.List(context.Background(), models.AuditFilter{CaseID: "c1"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, records[0].OldValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
