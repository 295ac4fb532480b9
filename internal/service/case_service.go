package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type caseRepository interface {
	List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error)
	FindByID(ctx context.Context, id string) (*models.Case, error)
	FindSummaryByID(ctx context.Context, id string) (*models.CaseSummary, error)
	Create(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error
	Update(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error
	UpdateState(ctx context.Context, ex sqlx.ExtContext, caseID, stateID string) error
	Delete(ctx context.Context, ex sqlx.ExtContext, id string) error
}

type caseStateLookup interface {
	FindByID(ctx context.Context, id string) (*models.CaseState, error)
	FindByNameAndType(ctx context.Context, name string, caseType models.CaseType) (*models.CaseState, error)
}

type caseEntrepreneurLookup interface {
	FindByID(ctx context.Context, id string) (*models.Entrepreneur, error)
}

type caseConvocatoriaLookup interface {
	FindByID(ctx context.Context, id string) (*models.Convocatoria, error)
}

type caseAssignmentLookup interface {
	ExistsPair(ctx context.Context, userID, caseID string) (bool, error)
}

// CreateCaseRequest represents payload for registering cases.
type CreateCaseRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Description    *string         `json:"description"`
	IntakeData     json.RawMessage `json:"intake_data"`
	Consent        bool            `json:"consent"`
	EntrepreneurID string          `json:"entrepreneur_id" validate:"required,uuid4"`
	ConvocatoriaID *string         `json:"convocatoria_id" validate:"omitempty,uuid4"`
	StateID        string          `json:"state_id" validate:"required,uuid4"`
}

// UpdateCaseRequest represents payload for partial case updates. The state
// has its own endpoint and is not part of it.
type UpdateCaseRequest struct {
	Name           *string         `json:"name" validate:"omitempty,max=200"`
	Description    *string         `json:"description"`
	IntakeData     json.RawMessage `json:"intake_data"`
	Consent        *bool           `json:"consent"`
	ConvocatoriaID *string         `json:"convocatoria_id" validate:"omitempty,uuid4"`
}

// ChangeStateRequest identifies the target state by its catalog natural
// key rather than by id.
type ChangeStateRequest struct {
	StateName string `json:"state_name" validate:"required,max=100"`
	CaseType  string `json:"case_type" validate:"required,oneof=Application Project"`
}

// CaseService orchestrates case lifecycle operations. Every mutation
// commits together with its audit record.
type CaseService struct {
	repo          caseRepository
	states        caseStateLookup
	entrepreneurs caseEntrepreneurLookup
	convocatorias caseConvocatoriaLookup
	assignments   caseAssignmentLookup
	audit         auditRecorder
	tx            txRunner
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewCaseService constructs a CaseService.
func NewCaseService(repo caseRepository, states caseStateLookup, entrepreneurs caseEntrepreneurLookup, convocatorias caseConvocatoriaLookup, assignments caseAssignmentLookup, audit auditRecorder, tx txRunner, validate *validator.Validate, logger *zap.Logger) *CaseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseService{
		repo:          repo,
		states:        states,
		entrepreneurs: entrepreneurs,
		convocatorias: convocatorias,
		assignments:   assignments,
		audit:         audit,
		tx:            tx,
		validator:     validate,
		logger:        logger,
	}
}

// List returns case summaries plus pagination data. Tutors only see cases
// they are assigned to.
func (s *CaseService) List(ctx context.Context, actor models.AuthUser, filter models.CaseFilter) ([]models.CaseSummary, *models.Pagination, error) {
	if actor.Role == models.RoleTutor {
		filter.AssignedUserID = actor.ID
	}
	summaries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cases")
	}
	return summaries, paginationFor(filter.Skip, filter.Limit, total), nil
}

// Get returns a case summary by id.
func (s *CaseService) Get(ctx context.Context, actor models.AuthUser, id string) (*models.CaseSummary, error) {
	summary, err := s.repo.FindSummaryByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	if err := s.ensureAccess(ctx, actor, id); err != nil {
		return nil, err
	}
	return summary, nil
}

// Create registers a new case.
func (s *CaseService) Create(ctx context.Context, actor models.AuthUser, req CreateCaseRequest) (*models.Case, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case payload")
	}

	if _, err := s.entrepreneurs.FindByID(ctx, req.EntrepreneurID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "entrepreneur does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entrepreneur")
	}
	if _, err := s.states.FindByID(ctx, req.StateID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "state does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load state")
	}
	if req.ConvocatoriaID != nil {
		if _, err := s.convocatorias.FindByID(ctx, *req.ConvocatoriaID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "convocatoria does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load convocatoria")
		}
	}

	c := &models.Case{
		Name:           req.Name,
		Description:    req.Description,
		IntakeData:     types.JSONText(req.IntakeData),
		Consent:        req.Consent,
		EntrepreneurID: req.EntrepreneurID,
		ConvocatoriaID: req.ConvocatoriaID,
		StateID:        req.StateID,
	}
	err := s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, ex, c); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create case")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionCaseCreated,
			NewValue: auditValue(caseSnapshot(c)),
			UserID:   actor.ID,
			CaseID:   &c.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update to a case. Only fields present in the
// payload change; the audit record keeps the full before and after.
func (s *CaseService) Update(ctx context.Context, actor models.AuthUser, id string, req UpdateCaseRequest) (*models.Case, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case payload")
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAccess(ctx, actor, id); err != nil {
		return nil, err
	}

	before := caseSnapshot(c)

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IntakeData != nil {
		c.IntakeData = types.JSONText(req.IntakeData)
	}
	if req.Consent != nil {
		c.Consent = *req.Consent
	}
	if req.ConvocatoriaID != nil {
		if _, err := s.convocatorias.FindByID(ctx, *req.ConvocatoriaID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "convocatoria does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load convocatoria")
		}
		c.ConvocatoriaID = req.ConvocatoriaID
	}

	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Update(ctx, ex, c); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update case")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionCaseUpdated,
			OldValue: auditValue(before),
			NewValue: auditValue(caseSnapshot(c)),
			UserID:   actor.ID,
			CaseID:   &c.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ChangeState moves a case to the catalog state identified by name and
// case type. The audit record keeps both states in "Name (Type)" form.
func (s *CaseService) ChangeState(ctx context.Context, actor models.AuthUser, id string, req ChangeStateRequest) (*models.Case, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid state change payload")
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAccess(ctx, actor, id); err != nil {
		return nil, err
	}

	target, err := s.states.FindByNameAndType(ctx, req.StateName, models.CaseType(req.CaseType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "state not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target state")
	}

	current, err := s.states.FindByID(ctx, c.StateID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current state")
	}

	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.UpdateState(ctx, ex, c.ID, target.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change case state")
		}
		rec := &models.AuditRecord{
			Action:   models.AuditActionStateChange,
			NewValue: auditValue(stateLabel(target)),
			UserID:   actor.ID,
			CaseID:   &c.ID,
		}
		if current != nil {
			rec.OldValue = auditValue(stateLabel(current))
		}
		return s.audit.Create(ctx, ex, rec)
	})
	if err != nil {
		return nil, err
	}

	c.StateID = target.ID
	return c, nil
}

// Delete removes a case. The audit record keeps the final snapshot and no
// case reference since the row is gone.
func (s *CaseService) Delete(ctx context.Context, actor models.AuthUser, id string) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	return s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Delete(ctx, ex, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete case")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionCaseDeleted,
			OldValue: auditValue(caseSnapshot(c)),
			UserID:   actor.ID,
		})
	})
}

func (s *CaseService) load(ctx context.Context, id string) (*models.Case, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	return c, nil
}

// ensureAccess rejects tutors acting on cases they are not assigned to.
func (s *CaseService) ensureAccess(ctx context.Context, actor models.AuthUser, caseID string) error {
	if actor.Role != models.RoleTutor {
		return nil
	}
	assigned, err := s.assignments.ExistsPair(ctx, actor.ID, caseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check case assignment")
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrForbidden, "case is not assigned to you")
	}
	return nil
}

// stateLabel renders a state for audit values.
func stateLabel(state *models.CaseState) string {
	return fmt.Sprintf("%s (%s)", state.Name, state.CaseType)
}

// caseSnapshot captures the auditable fields of a case. Maps marshal with
// sorted keys so equal snapshots compare equal as strings.
func caseSnapshot(c *models.Case) map[string]interface{} {
	snapshot := map[string]interface{}{
		"id":              c.ID,
		"name":            c.Name,
		"consent":         c.Consent,
		"entrepreneur_id": c.EntrepreneurID,
		"state_id":        c.StateID,
	}
	if c.Description != nil {
		snapshot["description"] = *c.Description
	}
	if c.ConvocatoriaID != nil {
		snapshot["convocatoria_id"] = *c.ConvocatoriaID
	}
	if len(c.IntakeData) > 0 {
		snapshot["intake_data"] = json.RawMessage(c.IntakeData)
	}
	return snapshot
}
