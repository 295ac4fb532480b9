package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ExistsPair(ctx context.Context, userID, caseID string) (bool, error)
	Create(ctx context.Context, ex sqlx.ExtContext, a *models.Assignment) error
	Delete(ctx context.Context, ex sqlx.ExtContext, id string) error
}

type assignmentUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.UserWithRole, error)
}

type assignmentCaseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Case, error)
}

// CreateAssignmentRequest represents payload for assigning staff to cases.
type CreateAssignmentRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	CaseID string `json:"case_id" validate:"required,uuid4"`
}

// AssignmentService orchestrates staff-to-case assignments.
type AssignmentService struct {
	repo      assignmentRepository
	users     assignmentUserLookup
	cases     assignmentCaseLookup
	audit     auditRecorder
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, users assignmentUserLookup, cases assignmentCaseLookup, audit auditRecorder, tx txRunner, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, users: users, cases: cases, audit: audit, tx: tx, validator: validate, logger: logger}
}

// List returns assignments plus pagination data.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, paginationFor(filter.Skip, filter.Limit, total), nil
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return a, nil
}

// Create assigns a staff member to a case. Assigning the same pair twice
// is rejected.
func (s *AssignmentService) Create(ctx context.Context, actor models.AuthUser, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "user does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is inactive")
	}
	if _, err := s.cases.FindByID(ctx, req.CaseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "case does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}

	exists, err := s.repo.ExistsPair(ctx, req.UserID, req.CaseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already assigned to this case")
	}

	a := &models.Assignment{UserID: req.UserID, CaseID: req.CaseID}
	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, ex, a); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionStaffAssigned,
			NewValue: auditValue(user.FullName),
			UserID:   actor.ID,
			CaseID:   &a.CaseID,
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, actor models.AuthUser, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var removed *string
	if user, err := s.users.FindByID(ctx, a.UserID); err == nil {
		removed = auditValue(user.FullName)
	} else {
		s.logger.Warn("failed to resolve assigned user for audit", zap.Error(err))
		removed = auditValue(a.UserID)
	}

	return s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Delete(ctx, ex, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionAssignmentRemoved,
			OldValue: removed,
			UserID:   actor.ID,
			CaseID:   &a.CaseID,
		})
	})
}
