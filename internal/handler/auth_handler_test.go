package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ithaka-ucu/backoffice-api/internal/middleware"
	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	"github.com/ithaka-ucu/backoffice-api/pkg/config"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

type userRepoStub struct {
	users map[string]*models.UserWithRole
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.UserWithRole, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.UserWithRole, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type auditStub struct {
	records []*models.AuditRecord
}

func (s *auditStub) Create(ctx context.Context, ex sqlx.ExtContext, rec *models.AuditRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *auditStub) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, int, error) {
	return nil, 0, nil
}

type txStub struct{}

func (s *txStub) Transact(ctx context.Context, fn func(ex sqlx.ExtContext) error) error {
	return fn(nil)
}

func newAuthFixture() (*AuthHandler, *auditStub) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &userRepoStub{users: map[string]*models.UserWithRole{
		"u1": {
			User:     models.User{ID: "u1", FullName: "Maria Silva", Email: "maria@example.com", PasswordHash: string(hash), Active: true},
			RoleName: models.RoleCoordinator,
		},
	}}
	audit := &auditStub{}
	cfg := config.JWTConfig{Secret: "secret", Expiration: time.Hour, Issuer: "ithaka-backoffice"}
	svc := service.NewAuthService(repo, audit, &txStub{}, validator.New(), zap.NewNop(), cfg)
	return NewAuthHandler(svc), audit
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthFixture()

	payload, _ := json.Marshal(models.LoginRequest{Email: "maria@example.com", Password: "password"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "bearer", data["token_type"])
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthFixture()

	payload, _ := json.Marshal(models.LoginRequest{Email: "maria@example.com", Password: "wrong"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.AuthUser{ID: "u1", FullName: "Maria Silva", Role: models.RoleCoordinator})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandlerMeUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	handler.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, audit := newAuthFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.AuthUser{ID: "u1", Role: models.RoleCoordinator})

	handler.Logout(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionLogout, audit.records[0].Action)
}
