package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type fakeEntrepreneurRepo struct {
	entrepreneurs map[string]*models.Entrepreneur
}

func newFakeEntrepreneurRepo() *fakeEntrepreneurRepo {
	return &fakeEntrepreneurRepo{entrepreneurs: make(map[string]*models.Entrepreneur)}
}

func (f *fakeEntrepreneurRepo) List(ctx context.Context, filter models.EntrepreneurFilter) ([]models.Entrepreneur, int, error) {
	out := make([]models.Entrepreneur, 0, len(f.entrepreneurs))
	for _, e := range f.entrepreneurs {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeEntrepreneurRepo) FindByID(ctx context.Context, id string) (*models.Entrepreneur, error) {
	e, ok := f.entrepreneurs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *e
	return &found, nil
}

func (f *fakeEntrepreneurRepo) Create(ctx context.Context, ent *models.Entrepreneur) error {
	if ent.ID == "" {
		ent.ID = "e-new"
	}
	stored := *ent
	f.entrepreneurs[ent.ID] = &stored
	return nil
}

func (f *fakeEntrepreneurRepo) Update(ctx context.Context, ent *models.Entrepreneur) error {
	stored := *ent
	f.entrepreneurs[ent.ID] = &stored
	return nil
}

func (f *fakeEntrepreneurRepo) Delete(ctx context.Context, id string) error {
	delete(f.entrepreneurs, id)
	return nil
}

func TestEntrepreneurCreateNormalizes(t *testing.T) {
	repo := newFakeEntrepreneurRepo()
	svc := NewEntrepreneurService(repo, validator.New(), zap.NewNop())

	phone := " +598 99 123 456 "
	blank := "   "
	ent, err := svc.Create(context.Background(), CreateEntrepreneurRequest{
		FullName:    "  Ana Perez  ",
		Email:       "Ana@Example.com",
		Phone:       &phone,
		Affiliation: &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Perez", ent.FullName)
	assert.Equal(t, "ana@example.com", ent.Email)
	require.NotNil(t, ent.Phone)
	assert.Equal(t, "+598 99 123 456", *ent.Phone)
	assert.Nil(t, ent.Affiliation)
}

func TestEntrepreneurCreateInvalidEmail(t *testing.T) {
	svc := NewEntrepreneurService(newFakeEntrepreneurRepo(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEntrepreneurRequest{FullName: "Ana Perez", Email: "not-an-email"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestEntrepreneurUpdatePartial(t *testing.T) {
	repo := newFakeEntrepreneurRepo()
	repo.entrepreneurs["e1"] = &models.Entrepreneur{ID: "e1", FullName: "Ana Perez", Email: "ana@example.com"}
	svc := NewEntrepreneurService(repo, validator.New(), zap.NewNop())

	name := "Ana Maria Perez"
	ent, err := svc.Update(context.Background(), "e1", UpdateEntrepreneurRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria Perez", ent.FullName)
	assert.Equal(t, "ana@example.com", ent.Email)
}

func TestEntrepreneurGetNotFound(t *testing.T) {
	svc := NewEntrepreneurService(newFakeEntrepreneurRepo(), validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "entrepreneur not found", appErr.Message)
}
