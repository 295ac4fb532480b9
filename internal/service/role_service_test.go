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

type fakeRoleRepo struct {
	roles     map[string]*models.Role
	userCount map[string]int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[string]*models.Role), userCount: make(map[string]int)}
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoleRepo) FindByID(ctx context.Context, id string) (*models.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *r
	return &found, nil
}

func (f *fakeRoleRepo) FindByName(ctx context.Context, name string) (*models.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			found := *r
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRoleRepo) CountUsers(ctx context.Context, roleID string) (int, error) {
	return f.userCount[roleID], nil
}

func (f *fakeRoleRepo) Create(ctx context.Context, ex sqlx.ExtContext, role *models.Role) error {
	if role.ID == "" {
		role.ID = "r-new"
	}
	stored := *role
	f.roles[role.ID] = &stored
	return nil
}

func (f *fakeRoleRepo) Update(ctx context.Context, ex sqlx.ExtContext, role *models.Role) error {
	stored := *role
	f.roles[role.ID] = &stored
	return nil
}

func (f *fakeRoleRepo) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	delete(f.roles, id)
	return nil
}

func adminActor() models.AuthUser {
	return models.AuthUser{ID: "admin-1", FullName: "Ana Admin", Email: "ana@example.com", Role: models.RoleAdmin}
}

func TestRoleCreateAudits(t *testing.T) {
	repo := newFakeRoleRepo()
	audit := &fakeAudit{}
	svc := NewRoleService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	role, err := svc.Create(context.Background(), adminActor(), RoleRequest{Name: "Mentor"})
	require.NoError(t, err)
	assert.Equal(t, "Mentor", role.Name)

	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionRoleCreated, audit.records[0].Action)
	require.NotNil(t, audit.records[0].NewValue)
	assert.Equal(t, "Mentor", *audit.records[0].NewValue)
	assert.Nil(t, audit.records[0].CaseID)
}

func TestRoleCreateDuplicateName(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["r1"] = &models.Role{ID: "r1", Name: "Mentor"}
	audit := &fakeAudit{}
	svc := NewRoleService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), adminActor(), RoleRequest{Name: "Mentor"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, audit.records)
}

func TestRoleUpdateAuditsOldAndNew(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["r1"] = &models.Role{ID: "r1", Name: "Mentor"}
	audit := &fakeAudit{}
	svc := NewRoleService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	role, err := svc.Update(context.Background(), adminActor(), "r1", RoleRequest{Name: "Senior Mentor"})
	require.NoError(t, err)
	assert.Equal(t, "Senior Mentor", role.Name)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionRoleUpdated, rec.Action)
	require.NotNil(t, rec.OldValue)
	require.NotNil(t, rec.NewValue)
	assert.Equal(t, "Mentor", *rec.OldValue)
	assert.Equal(t, "Senior Mentor", *rec.NewValue)
}

func TestRoleDeleteGuardNamesCount(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["r1"] = &models.Role{ID: "r1", Name: "Tutor"}
	repo.userCount["r1"] = 3
	audit := &fakeAudit{}
	svc := NewRoleService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminActor(), "r1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "cannot delete role: 3 user(s) still assigned to it", appErr.Message)
	assert.Contains(t, repo.roles, "r1")
	assert.Empty(t, audit.records)
}

func TestRoleDeleteUnusedAudits(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["r1"] = &models.Role{ID: "r1", Name: "Mentor"}
	audit := &fakeAudit{}
	svc := NewRoleService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminActor(), "r1")
	require.NoError(t, err)
	assert.NotContains(t, repo.roles, "r1")

	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionRoleDeleted, audit.records[0].Action)
	require.NotNil(t, audit.records[0].OldValue)
	assert.Equal(t, "Mentor", *audit.records[0].OldValue)
}

func TestRoleGetNotFound(t *testing.T) {
	svc := NewRoleService(newFakeRoleRepo(), &fakeAudit{}, &fakeTx{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
