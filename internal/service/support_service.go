package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type supportRepository interface {
	List(ctx context.Context, filter models.SupportFilter) ([]models.Support, int, error)
	FindByID(ctx context.Context, id string) (*models.Support, error)
	Create(ctx context.Context, ex sqlx.ExtContext, s *models.Support) error
	Update(ctx context.Context, ex sqlx.ExtContext, s *models.Support) error
	Delete(ctx context.Context, ex sqlx.ExtContext, id string) error
}

type requestedSupportRepository interface {
	ListByCase(ctx context.Context, caseID string) ([]models.RequestedSupport, error)
	FindByID(ctx context.Context, id string) (*models.RequestedSupport, error)
	Create(ctx context.Context, rs *models.RequestedSupport) error
	Update(ctx context.Context, rs *models.RequestedSupport) error
	Delete(ctx context.Context, id string) error
}

type supportProgramLookup interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// CreateSupportRequest represents payload for granting supports.
type CreateSupportRequest struct {
	SupportType string     `json:"support_type" validate:"required,max=200"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CaseID      string     `json:"case_id" validate:"required,uuid4"`
	ProgramID   string     `json:"program_id" validate:"required,uuid4"`
}

// UpdateSupportRequest represents payload for updating supports.
type UpdateSupportRequest struct {
	SupportType *string    `json:"support_type" validate:"omitempty,max=200"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	ProgramID   *string    `json:"program_id" validate:"omitempty,uuid4"`
}

// CreateRequestedSupportRequest represents payload for recording support
// requests captured at intake.
type CreateRequestedSupportRequest struct {
	Category string `json:"category" validate:"required,max=200"`
	CaseID   string `json:"case_id" validate:"required,uuid4"`
}

// UpdateRequestedSupportRequest represents payload for correcting a support
// request. Only the category is mutable.
type UpdateRequestedSupportRequest struct {
	Category *string `json:"category" validate:"omitempty,max=200"`
}

// SupportService orchestrates granted supports and intake support requests.
type SupportService struct {
	repo      supportRepository
	requests  requestedSupportRepository
	programs  supportProgramLookup
	cases     assignmentCaseLookup
	audit     auditRecorder
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSupportService constructs a SupportService.
func NewSupportService(repo supportRepository, requests requestedSupportRepository, programs supportProgramLookup, cases assignmentCaseLookup, audit auditRecorder, tx txRunner, validate *validator.Validate, logger *zap.Logger) *SupportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{repo: repo, requests: requests, programs: programs, cases: cases, audit: audit, tx: tx, validator: validate, logger: logger}
}

// List returns supports plus pagination data.
func (s *SupportService) List(ctx context.Context, filter models.SupportFilter) ([]models.Support, *models.Pagination, error) {
	supports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supports")
	}
	return supports, paginationFor(filter.Skip, filter.Limit, total), nil
}

// Get returns a support by id.
func (s *SupportService) Get(ctx context.Context, id string) (*models.Support, error) {
	support, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "support not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support")
	}
	return support, nil
}

// Create grants a program support to a case.
func (s *SupportService) Create(ctx context.Context, actor models.AuthUser, req CreateSupportRequest) (*models.Support, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid support payload")
	}

	if _, err := s.cases.FindByID(ctx, req.CaseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "case does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "program does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	support := &models.Support{
		SupportType: strings.TrimSpace(req.SupportType),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CaseID:      req.CaseID,
		ProgramID:   req.ProgramID,
	}
	err := s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, ex, support); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create support")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionSupportGranted,
			NewValue: auditValue(supportSnapshot(support)),
			UserID:   actor.ID,
			CaseID:   &support.CaseID,
		})
	})
	if err != nil {
		return nil, err
	}
	return support, nil
}

// Update modifies an existing support.
func (s *SupportService) Update(ctx context.Context, actor models.AuthUser, id string, req UpdateSupportRequest) (*models.Support, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid support payload")
	}

	support, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before := supportSnapshot(support)

	if req.SupportType != nil {
		support.SupportType = strings.TrimSpace(*req.SupportType)
	}
	if req.StartDate != nil {
		support.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		support.EndDate = req.EndDate
	}
	if req.ProgramID != nil {
		if _, err := s.programs.FindByID(ctx, *req.ProgramID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "program does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
		}
		support.ProgramID = *req.ProgramID
	}

	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Update(ctx, ex, support); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update support")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionSupportUpdated,
			OldValue: auditValue(before),
			NewValue: auditValue(supportSnapshot(support)),
			UserID:   actor.ID,
			CaseID:   &support.CaseID,
		})
	})
	if err != nil {
		return nil, err
	}
	return support, nil
}

// Delete removes a support.
func (s *SupportService) Delete(ctx context.Context, actor models.AuthUser, id string) error {
	support, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Delete(ctx, ex, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete support")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionSupportRemoved,
			OldValue: auditValue(supportSnapshot(support)),
			UserID:   actor.ID,
			CaseID:   &support.CaseID,
		})
	})
}

// ListRequested returns the support requests captured for a case.
func (s *SupportService) ListRequested(ctx context.Context, caseID string) ([]models.RequestedSupport, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	requests, err := s.requests.ListByCase(ctx, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requested supports")
	}
	return requests, nil
}

// CreateRequested records a support request for a case.
func (s *SupportService) CreateRequested(ctx context.Context, req CreateRequestedSupportRequest) (*models.RequestedSupport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requested support payload")
	}

	if _, err := s.cases.FindByID(ctx, req.CaseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "case does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}

	rs := &models.RequestedSupport{
		Category: strings.TrimSpace(req.Category),
		CaseID:   req.CaseID,
	}
	if err := s.requests.Create(ctx, rs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create requested support")
	}
	return rs, nil
}

// UpdateRequested corrects the category of a support request. The case it
// belongs to cannot change.
func (s *SupportService) UpdateRequested(ctx context.Context, id string, req UpdateRequestedSupportRequest) (*models.RequestedSupport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requested support payload")
	}

	rs, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requested support not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requested support")
	}

	if req.Category != nil {
		rs.Category = strings.TrimSpace(*req.Category)
	}
	if err := s.requests.Update(ctx, rs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update requested support")
	}
	return rs, nil
}

// DeleteRequested removes a support request.
func (s *SupportService) DeleteRequested(ctx context.Context, id string) error {
	if _, err := s.requests.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "requested support not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requested support")
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete requested support")
	}
	return nil
}

// supportSnapshot captures the auditable fields of a support.
func supportSnapshot(s *models.Support) map[string]interface{} {
	snapshot := map[string]interface{}{
		"id":           s.ID,
		"support_type": s.SupportType,
		"case_id":      s.CaseID,
		"program_id":   s.ProgramID,
	}
	if s.StartDate != nil {
		snapshot["start_date"] = s.StartDate.UTC().Format(time.RFC3339)
	}
	if s.EndDate != nil {
		snapshot["end_date"] = s.EndDate.UTC().Format(time.RFC3339)
	}
	return snapshot
}
