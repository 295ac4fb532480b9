package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type stateRepository interface {
	List(ctx context.Context, filter models.CaseStateFilter) ([]models.CaseState, int, error)
	FindByID(ctx context.Context, id string) (*models.CaseState, error)
	FindByNameAndType(ctx context.Context, name string, caseType models.CaseType) (*models.CaseState, error)
	CountCases(ctx context.Context, stateID string) (int, error)
	Create(ctx context.Context, state *models.CaseState) error
	Update(ctx context.Context, state *models.CaseState) error
	Delete(ctx context.Context, id string) error
}

// CreateStateRequest represents payload for adding catalog states.
type CreateStateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	CaseType string `json:"case_type" validate:"required,oneof=Application Project"`
}

// UpdateStateRequest represents payload for renaming catalog states.
type UpdateStateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// StateService orchestrates the case state catalog.
type StateService struct {
	repo      stateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStateService constructs a StateService.
func NewStateService(repo stateRepository, validate *validator.Validate, logger *zap.Logger) *StateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateService{repo: repo, validator: validate, logger: logger}
}

// List returns catalog states plus pagination data.
func (s *StateService) List(ctx context.Context, filter models.CaseStateFilter) ([]models.CaseState, *models.Pagination, error) {
	states, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list states")
	}
	return states, paginationFor(filter.Skip, filter.Limit, total), nil
}

// Get returns a catalog state by id.
func (s *StateService) Get(ctx context.Context, id string) (*models.CaseState, error) {
	state, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "state not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load state")
	}
	return state, nil
}

// Create adds a catalog state. The (name, case type) pair must be unique.
func (s *StateService) Create(ctx context.Context, req CreateStateRequest) (*models.CaseState, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid state payload")
	}

	name := strings.TrimSpace(req.Name)
	caseType := models.CaseType(req.CaseType)
	if _, err := s.repo.FindByNameAndType(ctx, name, caseType); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "state already exists for this case type")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check state name")
	}

	state := &models.CaseState{Name: name, CaseType: caseType}
	if err := s.repo.Create(ctx, state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create state")
	}
	return state, nil
}

// Update renames a catalog state within its case type.
func (s *StateService) Update(ctx context.Context, id string, req UpdateStateRequest) (*models.CaseState, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid state payload")
	}

	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if existing, err := s.repo.FindByNameAndType(ctx, name, state.CaseType); err == nil {
		if existing.ID != id {
			return nil, appErrors.Clone(appErrors.ErrConflict, "state already exists for this case type")
		}
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check state name")
	}

	state.Name = name
	if err := s.repo.Update(ctx, state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update state")
	}
	return state, nil
}

// Delete removes a catalog state not referenced by any case.
func (s *StateService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountCases(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count state cases")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot delete state: %d case(s) currently in it", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete state")
	}
	return nil
}
