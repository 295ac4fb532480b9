package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type entrepreneurRepository interface {
	List(ctx context.Context, filter models.EntrepreneurFilter) ([]models.Entrepreneur, int, error)
	FindByID(ctx context.Context, id string) (*models.Entrepreneur, error)
	Create(ctx context.Context, ent *models.Entrepreneur) error
	Update(ctx context.Context, ent *models.Entrepreneur) error
	Delete(ctx context.Context, id string) error
}

// CreateEntrepreneurRequest represents payload for registering entrepreneurs.
type CreateEntrepreneurRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Affiliation *string `json:"affiliation" validate:"omitempty,max=200"`
}

// UpdateEntrepreneurRequest represents payload for updating entrepreneurs.
type UpdateEntrepreneurRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Affiliation *string `json:"affiliation" validate:"omitempty,max=200"`
}

// EntrepreneurService orchestrates entrepreneur operations.
type EntrepreneurService struct {
	repo      entrepreneurRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEntrepreneurService constructs an EntrepreneurService.
func NewEntrepreneurService(repo entrepreneurRepository, validate *validator.Validate, logger *zap.Logger) *EntrepreneurService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntrepreneurService{repo: repo, validator: validate, logger: logger}
}

// List returns entrepreneurs plus pagination data.
func (s *EntrepreneurService) List(ctx context.Context, filter models.EntrepreneurFilter) ([]models.Entrepreneur, *models.Pagination, error) {
	ents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entrepreneurs")
	}
	return ents, paginationFor(filter.Skip, filter.Limit, total), nil
}

// Get returns an entrepreneur by id.
func (s *EntrepreneurService) Get(ctx context.Context, id string) (*models.Entrepreneur, error) {
	ent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entrepreneur not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entrepreneur")
	}
	return ent, nil
}

// Create registers a new entrepreneur.
func (s *EntrepreneurService) Create(ctx context.Context, req CreateEntrepreneurRequest) (*models.Entrepreneur, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entrepreneur payload")
	}

	ent := &models.Entrepreneur{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       normalizeOptional(req.Phone),
		Affiliation: normalizeOptional(req.Affiliation),
	}
	if err := s.repo.Create(ctx, ent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create entrepreneur")
	}
	return ent, nil
}

// Update modifies an existing entrepreneur.
func (s *EntrepreneurService) Update(ctx context.Context, id string, req UpdateEntrepreneurRequest) (*models.Entrepreneur, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entrepreneur payload")
	}

	ent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		ent.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		ent.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		ent.Phone = normalizeOptional(req.Phone)
	}
	if req.Affiliation != nil {
		ent.Affiliation = normalizeOptional(req.Affiliation)
	}

	if err := s.repo.Update(ctx, ent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entrepreneur")
	}
	return ent, nil
}

// Delete removes an entrepreneur.
func (s *EntrepreneurService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete entrepreneur")
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
