package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type roleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id string) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	CountUsers(ctx context.Context, roleID string) (int, error)
	Create(ctx context.Context, ex sqlx.ExtContext, role *models.Role) error
	Update(ctx context.Context, ex sqlx.ExtContext, role *models.Role) error
	Delete(ctx context.Context, ex sqlx.ExtContext, id string) error
}

// RoleRequest represents payload for creating or renaming roles.
type RoleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// RoleService orchestrates role catalog operations.
type RoleService struct {
	repo      roleRepository
	audit     auditRecorder
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(repo roleRepository, audit auditRecorder, tx txRunner, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{repo: repo, audit: audit, tx: tx, validator: validate, logger: logger}
}

// List returns all roles.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roles")
	}
	return roles, nil
}

// Get returns a role by id.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}
	return role, nil
}

// Create registers a new role.
func (s *RoleService) Create(ctx context.Context, actor models.AuthUser, req RoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}

	role := &models.Role{Name: name}
	err := s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, ex, role); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionRoleCreated,
			NewValue: auditValue(role.Name),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Update renames a role.
func (s *RoleService) Update(ctx context.Context, actor models.AuthUser, id string, req RoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, id); err != nil {
		return nil, err
	}

	oldName := role.Name
	role.Name = name
	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Update(ctx, ex, role); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionRoleUpdated,
			OldValue: auditValue(oldName),
			NewValue: auditValue(role.Name),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a role. A role still held by users cannot be deleted;
// the rejection names how many hold it.
func (s *RoleService) Delete(ctx context.Context, actor models.AuthUser, id string) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count role users")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot delete role: %d user(s) still assigned to it", count))
	}

	return s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Delete(ctx, ex, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete role")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionRoleDeleted,
			OldValue: auditValue(role.Name),
			UserID:   actor.ID,
		})
	})
}

func (s *RoleService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role name")
	}
	if existing.ID != excludeID {
		return appErrors.Clone(appErrors.ErrConflict, "role name already used")
	}
	return nil
}
