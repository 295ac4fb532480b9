package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/middleware"
	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
)

type caseRepoStub struct {
	cases      map[string]*models.Case
	lastFilter models.CaseFilter
}

func (s *caseRepoStub) List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	s.lastFilter = filter
	out := make([]models.CaseSummary, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, models.CaseSummary{ID: c.ID, Name: c.Name})
	}
	return out, len(out), nil
}

func (s *caseRepoStub) FindByID(ctx context.Context, id string) (*models.Case, error) {
	c, ok := s.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (s *caseRepoStub) FindSummaryByID(ctx context.Context, id string) (*models.CaseSummary, error) {
	c, ok := s.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.CaseSummary{ID: c.ID, Name: c.Name}, nil
}

func (s *caseRepoStub) Create(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error {
	if c.ID == "" {
		c.ID = "c-new"
	}
	s.cases[c.ID] = c
	return nil
}

func (s *caseRepoStub) Update(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error {
	s.cases[c.ID] = c
	return nil
}

func (s *caseRepoStub) UpdateState(ctx context.Context, ex sqlx.ExtContext, caseID, stateID string) error {
	return nil
}

func (s *caseRepoStub) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	delete(s.cases, id)
	return nil
}

type stateLookupStub struct{}

func (stateLookupStub) FindByID(ctx context.Context, id string) (*models.CaseState, error) {
	return nil, sql.ErrNoRows
}

func (stateLookupStub) FindByNameAndType(ctx context.Context, name string, caseType models.CaseType) (*models.CaseState, error) {
	return nil, sql.ErrNoRows
}

type entrepreneurLookupStub struct{}

func (entrepreneurLookupStub) FindByID(ctx context.Context, id string) (*models.Entrepreneur, error) {
	return nil, sql.ErrNoRows
}

type convocatoriaLookupStub struct{}

func (convocatoriaLookupStub) FindByID(ctx context.Context, id string) (*models.Convocatoria, error) {
	return nil, sql.ErrNoRows
}

type pairLookupStub struct{}

func (pairLookupStub) ExistsPair(ctx context.Context, userID, caseID string) (bool, error) {
	return false, nil
}

func newCaseHandlerFixture() (*CaseHandler, *caseRepoStub) {
	repo := &caseRepoStub{cases: map[string]*models.Case{
		"c1": {ID: "c1", Name: "Solar kiosk", EntrepreneurID: "e1", StateID: "s1"},
	}}
	svc := service.NewCaseService(repo, stateLookupStub{}, entrepreneurLookupStub{}, convocatoriaLookupStub{}, pairLookupStub{}, &auditStub{}, &txStub{}, validator.New(), zap.NewNop())
	return NewCaseHandler(svc), repo
}

func staffContext(w *httptest.ResponseRecorder, method, target string) (*gin.Context, *models.AuthUser) {
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, nil)
	c.Request = req
	user := &models.AuthUser{ID: "u1", FullName: "Carla Coord", Role: models.RoleCoordinator}
	c.Set(middleware.ContextUserKey, user)
	return c, user
}

func TestCaseHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newCaseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := staffContext(w, http.MethodGet, "/cases?state=Accepted&case_type=Project&limit=10")

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Accepted", repo.lastFilter.StateName)
	assert.Equal(t, "Project", repo.lastFilter.CaseType)
	assert.Equal(t, 10, repo.lastFilter.Limit)
}

func TestCaseHandlerListUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newCaseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/cases", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCaseHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newCaseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := staffContext(w, http.MethodGet, "/cases/missing")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaseHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newCaseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/cases", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.AuthUser{ID: "u1", Role: models.RoleCoordinator})

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaseHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newCaseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := staffContext(w, http.MethodDelete, "/cases/c1")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, repo.cases, "c1")
}
