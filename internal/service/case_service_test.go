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

type fakeCaseRepo struct {
	cases      map[string]*models.Case
	lastFilter models.CaseFilter
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[string]*models.Case)}
}

func (f *fakeCaseRepo) List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeCaseRepo) FindByID(ctx context.Context, id string) (*models.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *c
	return &found, nil
}

func (f *fakeCaseRepo) FindSummaryByID(ctx context.Context, id string) (*models.CaseSummary, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.CaseSummary{ID: c.ID, Name: c.Name, Consent: c.Consent}, nil
}

func (f *fakeCaseRepo) Create(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error {
	if c.ID == "" {
		c.ID = "c-new"
	}
	stored := *c
	f.cases[c.ID] = &stored
	return nil
}

func (f *fakeCaseRepo) Update(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error {
	stored := *c
	f.cases[c.ID] = &stored
	return nil
}

func (f *fakeCaseRepo) UpdateState(ctx context.Context, ex sqlx.ExtContext, caseID, stateID string) error {
	if c, ok := f.cases[caseID]; ok {
		c.StateID = stateID
	}
	return nil
}

func (f *fakeCaseRepo) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	delete(f.cases, id)
	return nil
}

type fakeStateLookup struct {
	states map[string]*models.CaseState
}

func (f *fakeStateLookup) FindByID(ctx context.Context, id string) (*models.CaseState, error) {
	s, ok := f.states[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeStateLookup) FindByNameAndType(ctx context.Context, name string, caseType models.CaseType) (*models.CaseState, error) {
	for _, s := range f.states {
		if s.Name == name && s.CaseType == caseType {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeEntrepreneurLookup struct {
	entrepreneurs map[string]*models.Entrepreneur
}

func (f *fakeEntrepreneurLookup) FindByID(ctx context.Context, id string) (*models.Entrepreneur, error) {
	e, ok := f.entrepreneurs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

type fakeConvocatoriaLookup struct {
	convocatorias map[string]*models.Convocatoria
}

func (f *fakeConvocatoriaLookup) FindByID(ctx context.Context, id string) (*models.Convocatoria, error) {
	cv, ok := f.convocatorias[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cv, nil
}

type fakePairLookup struct {
	pairs map[string]bool
}

func (f *fakePairLookup) ExistsPair(ctx context.Context, userID, caseID string) (bool, error) {
	return f.pairs[userID+"/"+caseID], nil
}

const (
	receivedStateID = "66666666-6666-4666-8666-666666666666"
	acceptedStateID = "77777777-7777-4777-8777-777777777777"
	entrepreneurID  = "11111111-1111-4111-8111-111111111111"
)

func newCaseFixture() (*CaseService, *fakeCaseRepo, *fakeAudit, *fakePairLookup) {
	repo := newFakeCaseRepo()
	states := &fakeStateLookup{states: map[string]*models.CaseState{
		receivedStateID: {ID: receivedStateID, Name: "Received", CaseType: models.CaseTypeApplication},
		acceptedStateID: {ID: acceptedStateID, Name: "Accepted", CaseType: models.CaseTypeApplication},
	}}
	entrepreneurs := &fakeEntrepreneurLookup{entrepreneurs: map[string]*models.Entrepreneur{
		entrepreneurID: {ID: entrepreneurID, FullName: "Ana Perez"},
	}}
	convocatorias := &fakeConvocatoriaLookup{convocatorias: map[string]*models.Convocatoria{}}
	pairs := &fakePairLookup{pairs: map[string]bool{}}
	audit := &fakeAudit{}
	svc := NewCaseService(repo, states, entrepreneurs, convocatorias, pairs, audit, &fakeTx{}, validator.New(), zap.NewNop())
	return svc, repo, audit, pairs
}

func seededCase(repo *fakeCaseRepo) *models.Case {
	c := &models.Case{
		ID:             "c1",
		Name:           "Solar kiosk",
		Consent:        true,
		EntrepreneurID: entrepreneurID,
		StateID:        receivedStateID,
	}
	repo.cases[c.ID] = c
	return c
}

func TestCaseCreateAudits(t *testing.T) {
	svc, repo, audit, _ := newCaseFixture()

	c, err := svc.Create(context.Background(), adminActor(), CreateCaseRequest{
		Name:           "Solar kiosk",
		Consent:        true,
		EntrepreneurID: entrepreneurID,
		StateID:        receivedStateID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Contains(t, repo.cases, c.ID)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionCaseCreated, rec.Action)
	assert.Nil(t, rec.OldValue)
	require.NotNil(t, rec.NewValue)
	assert.Contains(t, *rec.NewValue, "Solar kiosk")
	require.NotNil(t, rec.CaseID)
	assert.Equal(t, c.ID, *rec.CaseID)
}

func TestCaseCreateUnknownState(t *testing.T) {
	svc, _, audit, _ := newCaseFixture()

	_, err := svc.Create(context.Background(), adminActor(), CreateCaseRequest{
		Name:           "Solar kiosk",
		EntrepreneurID: entrepreneurID,
		StateID:        "22222222-2222-4222-8222-222222222222",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, audit.records)
}

func TestCaseUpdateAuditsBeforeAndAfter(t *testing.T) {
	svc, repo, audit, _ := newCaseFixture()
	seededCase(repo)

	newName := "Solar kiosk v2"
	c, err := svc.Update(context.Background(), adminActor(), "c1", UpdateCaseRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, c.Name)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionCaseUpdated, rec.Action)
	require.NotNil(t, rec.OldValue)
	require.NotNil(t, rec.NewValue)
	assert.Contains(t, *rec.OldValue, "Solar kiosk")
	assert.Contains(t, *rec.NewValue, "Solar kiosk v2")
}

func TestCaseUpdateNotFoundNoAudit(t *testing.T) {
	svc, _, audit, _ := newCaseFixture()

	name := "anything"
	_, err := svc.Update(context.Background(), adminActor(), "missing", UpdateCaseRequest{Name: &name})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, audit.records)
}

func TestCaseChangeStateAuditLabels(t *testing.T) {
	svc, repo, audit, _ := newCaseFixture()
	seededCase(repo)

	c, err := svc.ChangeState(context.Background(), adminActor(), "c1", ChangeStateRequest{StateName: "Accepted", CaseType: "Application"})
	require.NoError(t, err)
	assert.Equal(t, acceptedStateID, c.StateID)
	assert.Equal(t, acceptedStateID, repo.cases["c1"].StateID)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionStateChange, rec.Action)
	require.NotNil(t, rec.OldValue)
	require.NotNil(t, rec.NewValue)
	assert.Equal(t, "Received (Application)", *rec.OldValue)
	assert.Equal(t, "Accepted (Application)", *rec.NewValue)
}

func TestCaseChangeStateUnknownTarget(t *testing.T) {
	svc, repo, audit, _ := newCaseFixture()
	seededCase(repo)

	_, err := svc.ChangeState(context.Background(), adminActor(), "c1", ChangeStateRequest{StateName: "Graduated", CaseType: "Project"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, receivedStateID, repo.cases["c1"].StateID)
	assert.Empty(t, audit.records)
}

func TestCaseDeleteAuditKeepsSnapshotOnly(t *testing.T) {
	svc, repo, audit, _ := newCaseFixture()
	seededCase(repo)

	err := svc.Delete(context.Background(), adminActor(), "c1")
	require.NoError(t, err)
	assert.NotContains(t, repo.cases, "c1")

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, models.AuditActionCaseDeleted, rec.Action)
	require.NotNil(t, rec.OldValue)
	assert.Contains(t, *rec.OldValue, "Solar kiosk")
	assert.Nil(t, rec.CaseID)
}

func TestCaseListTutorScoped(t *testing.T) {
	svc, repo, _, _ := newCaseFixture()
	tutor := models.AuthUser{ID: "t1", Role: models.RoleTutor}

	_, _, err := svc.List(context.Background(), tutor, models.CaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, "t1", repo.lastFilter.AssignedUserID)
}

func TestCaseGetTutorUnassigned(t *testing.T) {
	svc, repo, _, pairs := newCaseFixture()
	seededCase(repo)
	tutor := models.AuthUser{ID: "t1", Role: models.RoleTutor}

	_, err := svc.Get(context.Background(), tutor, "c1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Equal(t, "case is not assigned to you", appErr.Message)

	pairs.pairs["t1/c1"] = true
	summary, err := svc.Get(context.Background(), tutor, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", summary.ID)
}

func TestCaseUpdateTutorAssigned(t *testing.T) {
	svc, repo, audit, pairs := newCaseFixture()
	seededCase(repo)
	pairs.pairs["t1/c1"] = true
	tutor := models.AuthUser{ID: "t1", Role: models.RoleTutor}

	name := "Renamed by tutor"
	c, err := svc.Update(context.Background(), tutor, "c1", UpdateCaseRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, c.Name)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "t1", audit.records[0].UserID)
}
