package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type convocatoriaRepository interface {
	List(ctx context.Context, skip, limit int) ([]models.Convocatoria, int, error)
	FindByID(ctx context.Context, id string) (*models.Convocatoria, error)
	CountCases(ctx context.Context, convocatoriaID string) (int, error)
	Create(ctx context.Context, ex sqlx.ExtContext, conv *models.Convocatoria) error
	Update(ctx context.Context, ex sqlx.ExtContext, conv *models.Convocatoria) error
	Delete(ctx context.Context, ex sqlx.ExtContext, id string) error
}

// ConvocatoriaRequest represents payload for creating or updating
// convocatorias.
type ConvocatoriaRequest struct {
	Name     string     `json:"name" validate:"required,max=200"`
	ClosesAt *time.Time `json:"closes_at"`
}

// ConvocatoriaService orchestrates intake cycle operations.
type ConvocatoriaService struct {
	repo      convocatoriaRepository
	audit     auditRecorder
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConvocatoriaService constructs a ConvocatoriaService.
func NewConvocatoriaService(repo convocatoriaRepository, audit auditRecorder, tx txRunner, validate *validator.Validate, logger *zap.Logger) *ConvocatoriaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConvocatoriaService{repo: repo, audit: audit, tx: tx, validator: validate, logger: logger}
}

// List returns convocatorias plus pagination data.
func (s *ConvocatoriaService) List(ctx context.Context, skip, limit int) ([]models.Convocatoria, *models.Pagination, error) {
	convs, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list convocatorias")
	}
	return convs, paginationFor(skip, limit, total), nil
}

// Get returns a convocatoria by id.
func (s *ConvocatoriaService) Get(ctx context.Context, id string) (*models.Convocatoria, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "convocatoria not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load convocatoria")
	}
	return conv, nil
}

// Create registers a new convocatoria.
func (s *ConvocatoriaService) Create(ctx context.Context, actor models.AuthUser, req ConvocatoriaRequest) (*models.Convocatoria, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid convocatoria payload")
	}

	conv := &models.Convocatoria{
		Name:     strings.TrimSpace(req.Name),
		ClosesAt: req.ClosesAt,
	}
	err := s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, ex, conv); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create convocatoria")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionConvocatoriaCreated,
			NewValue: auditValue(conv.Name),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Update modifies an existing convocatoria.
func (s *ConvocatoriaService) Update(ctx context.Context, actor models.AuthUser, id string, req ConvocatoriaRequest) (*models.Convocatoria, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid convocatoria payload")
	}

	conv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldName := conv.Name
	conv.Name = strings.TrimSpace(req.Name)
	conv.ClosesAt = req.ClosesAt
	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Update(ctx, ex, conv); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update convocatoria")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionConvocatoriaUpdated,
			OldValue: auditValue(oldName),
			NewValue: auditValue(conv.Name),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Delete removes a convocatoria no case references. The rejection names
// how many cases still point at it.
func (s *ConvocatoriaService) Delete(ctx context.Context, actor models.AuthUser, id string) error {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountCases(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count convocatoria cases")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot delete convocatoria: %d case(s) still reference it", count))
	}

	return s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Delete(ctx, ex, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete convocatoria")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionConvocatoriaDeleted,
			OldValue: auditValue(conv.Name),
			UserID:   actor.ID,
		})
	})
}
