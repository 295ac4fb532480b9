package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type fakeAssignmentRepo struct {
	assignments map[string]*models.Assignment
	pairs       map[string]bool
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*models.Assignment), pairs: make(map[string]bool)}
}

func (f *fakeAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	out := make([]models.Assignment, 0, len(f.assignments))
	for _, a := range f.assignments {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *a
	return &found, nil
}

func (f *fakeAssignmentRepo) ExistsPair(ctx context.Context, userID, caseID string) (bool, error) {
	return f.pairs[userID+"/"+caseID], nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, ex sqlx.ExtContext, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = "a-new"
	}
	stored := *a
	f.assignments[a.ID] = &stored
	f.pairs[a.UserID+"/"+a.CaseID] = true
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	delete(f.assignments, id)
	return nil
}

type fakeUserLookup struct {
	users map[string]*models.UserWithRole
}

func (f *fakeUserLookup) FindByID(ctx context.Context, id string) (*models.UserWithRole, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

const (
	tutorID = "33333333-3333-4333-8333-333333333333"
	caseID  = "44444444-4444-4444-8444-444444444444"
)

func newAssignmentFixture() (*AssignmentService, *fakeAssignmentRepo, *fakeAudit) {
	repo := newFakeAssignmentRepo()
	users := &fakeUserLookup{users: map[string]*models.UserWithRole{
		tutorID: {User: models.User{ID: tutorID, FullName: "Pedro Tutor", Active: true}, RoleName: models.RoleTutor},
	}}
	cases := newFakeCaseRepo()
	cases.cases[caseID] = &models.Case{ID: caseID, Name: "Solar kiosk", StateID: "s1"}
	audit := &fakeAudit{}
	svc := NewAssignmentService(repo, users, cases, audit, &fakeTx{}, validator.New(), zap.NewNop())
	return svc, repo, audit
}

func TestAssignmentCreateAuditsUserName(t *testing.T) {
	svc, repo, audit := newAssignmentFixture()

	a, err := svc.Create(context.Background(), adminActor(), CreateAssignmentRequest{UserID: tutorID, CaseID: caseID})
	require.NoError(t, err)
	assert.Contains(t, repo.assignments, a.ID)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionStaffAssigned, rec.Action)
	require.NotNil(t, rec.NewValue)
	assert.Equal(t, "Pedro Tutor", *rec.NewValue)
	require.NotNil(t, rec.CaseID)
	assert.Equal(t, caseID, *rec.CaseID)
}

func TestAssignmentCreateDuplicatePair(t *testing.T) {
	svc, repo, audit := newAssignmentFixture()
	repo.pairs[tutorID+"/"+caseID] = true

	_, err := svc.Create(context.Background(), adminActor(), CreateAssignmentRequest{UserID: tutorID, CaseID: caseID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "user is already assigned to this case", appErr.Message)
	assert.Empty(t, audit.records)
}

func TestAssignmentCreateInactiveUser(t *testing.T) {
	svc, _, audit := newAssignmentFixture()
	inactive := "55555555-5555-4555-8555-555555555555"
	fixtureUsers := svc.users.(*fakeUserLookup)
	fixtureUsers.users[inactive] = &models.UserWithRole{User: models.User{ID: inactive, FullName: "Gone", Active: false}, RoleName: models.RoleTutor}

	_, err := svc.Create(context.Background(), adminActor(), CreateAssignmentRequest{UserID: inactive, CaseID: caseID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, audit.records)
}

func TestAssignmentDeleteAudits(t *testing.T) {
	svc, repo, audit := newAssignmentFixture()
	repo.assignments["a1"] = &models.Assignment{ID: "a1", UserID: tutorID, CaseID: caseID}

	err := svc.Delete(context.Background(), adminActor(), "a1")
	require.NoError(t, err)
	assert.NotContains(t, repo.assignments, "a1")

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionAssignmentRemoved, rec.Action)
	require.NotNil(t, rec.OldValue)
	assert.Equal(t, "Pedro Tutor", *rec.OldValue)
}
