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

type fakeConvocatoriaRepo struct {
	convocatorias map[string]*models.Convocatoria
	caseCount     map[string]int
}

func newFakeConvocatoriaRepo() *fakeConvocatoriaRepo {
	return &fakeConvocatoriaRepo{convocatorias: make(map[string]*models.Convocatoria), caseCount: make(map[string]int)}
}

func (f *fakeConvocatoriaRepo) List(ctx context.Context, skip, limit int) ([]models.Convocatoria, int, error) {
	out := make([]models.Convocatoria, 0, len(f.convocatorias))
	for _, cv := range f.convocatorias {
		out = append(out, *cv)
	}
	return out, len(out), nil
}

func (f *fakeConvocatoriaRepo) FindByID(ctx context.Context, id string) (*models.Convocatoria, error) {
	cv, ok := f.convocatorias[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *cv
	return &found, nil
}

func (f *fakeConvocatoriaRepo) CountCases(ctx context.Context, convocatoriaID string) (int, error) {
	return f.caseCount[convocatoriaID], nil
}

func (f *fakeConvocatoriaRepo) Create(ctx context.Context, ex sqlx.ExtContext, conv *models.Convocatoria) error {
	if conv.ID == "" {
		conv.ID = "cv-new"
	}
	stored := *conv
	f.convocatorias[conv.ID] = &stored
	return nil
}

func (f *fakeConvocatoriaRepo) Update(ctx context.Context, ex sqlx.ExtContext, conv *models.Convocatoria) error {
	stored := *conv
	f.convocatorias[conv.ID] = &stored
	return nil
}

func (f *fakeConvocatoriaRepo) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	delete(f.convocatorias, id)
	return nil
}

func TestConvocatoriaCreateAudits(t *testing.T) {
	repo := newFakeConvocatoriaRepo()
	audit := &fakeAudit{}
	svc := NewConvocatoriaService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	conv, err := svc.Create(context.Background(), adminActor(), ConvocatoriaRequest{Name: " 2026 Spring Call "})
	require.NoError(t, err)
	assert.Equal(t, "2026 Spring Call", conv.Name)

	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionConvocatoriaCreated, audit.records[0].Action)
	require.NotNil(t, audit.records[0].NewValue)
	assert.Equal(t, "2026 Spring Call", *audit.records[0].NewValue)
}

func TestConvocatoriaDeleteGuardNamesCount(t *testing.T) {
	repo := newFakeConvocatoriaRepo()
	repo.convocatorias["cv1"] = &models.Convocatoria{ID: "cv1", Name: "2026 Spring Call"}
	repo.caseCount["cv1"] = 5
	audit := &fakeAudit{}
	svc := NewConvocatoriaService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminActor(), "cv1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "cannot delete convocatoria: 5 case(s) still reference it", appErr.Message)
	assert.Contains(t, repo.convocatorias, "cv1")
	assert.Empty(t, audit.records)
}

func TestConvocatoriaDeleteUnreferenced(t *testing.T) {
	repo := newFakeConvocatoriaRepo()
	repo.convocatorias["cv1"] = &models.Convocatoria{ID: "cv1", Name: "2026 Spring Call"}
	audit := &fakeAudit{}
	svc := NewConvocatoriaService(repo, audit, &fakeTx{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminActor(), "cv1")
	require.NoError(t, err)
	assert.NotContains(t, repo.convocatorias, "cv1")

	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionConvocatoriaDeleted, audit.records[0].Action)
}
