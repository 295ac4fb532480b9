package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

type noteRepository interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error)
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, ex sqlx.ExtContext, n *models.Note) error
	Update(ctx context.Context, ex sqlx.ExtContext, n *models.Note) error
	Delete(ctx context.Context, ex sqlx.ExtContext, id string) error
}

// CreateNoteRequest represents payload for adding case notes. The author
// is always the authenticated caller.
type CreateNoteRequest struct {
	Content string `json:"content" validate:"required"`
	CaseID  string `json:"case_id" validate:"required,uuid4"`
}

// UpdateNoteRequest represents payload for editing note content.
type UpdateNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// NoteService orchestrates case note operations.
type NoteService struct {
	repo        noteRepository
	cases       assignmentCaseLookup
	assignments caseAssignmentLookup
	audit       auditRecorder
	tx          txRunner
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo noteRepository, cases assignmentCaseLookup, assignments caseAssignmentLookup, audit auditRecorder, tx txRunner, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, cases: cases, assignments: assignments, audit: audit, tx: tx, validator: validate, logger: logger}
}

// List returns notes plus pagination data.
func (s *NoteService) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, *models.Pagination, error) {
	notes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, paginationFor(filter.Skip, filter.Limit, total), nil
}

// Get returns a note by id.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	return n, nil
}

// Create adds a note authored by the caller. Tutors may only note cases
// they are assigned to.
func (s *NoteService) Create(ctx context.Context, actor models.AuthUser, req CreateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}

	if _, err := s.cases.FindByID(ctx, req.CaseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "case does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	if err := s.ensureCaseAccess(ctx, actor, req.CaseID); err != nil {
		return nil, err
	}

	n := &models.Note{
		Content: strings.TrimSpace(req.Content),
		CaseID:  req.CaseID,
		UserID:  actor.ID,
	}
	err := s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, ex, n); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionNoteCreated,
			NewValue: auditValue(n.Content),
			UserID:   actor.ID,
			CaseID:   &n.CaseID,
		})
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Update edits a note's content. Only the author or an admin may edit.
func (s *NoteService) Update(ctx context.Context, actor models.AuthUser, id string, req UpdateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}

	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoteAccess(actor, n); err != nil {
		return nil, err
	}

	oldContent := n.Content
	n.Content = strings.TrimSpace(req.Content)
	err = s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Update(ctx, ex, n); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionNoteUpdated,
			OldValue: auditValue(oldContent),
			NewValue: auditValue(n.Content),
			UserID:   actor.ID,
			CaseID:   &n.CaseID,
		})
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a note. Only the author or an admin may delete.
func (s *NoteService) Delete(ctx context.Context, actor models.AuthUser, id string) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureNoteAccess(actor, n); err != nil {
		return err
	}

	return s.tx.Transact(ctx, func(ex sqlx.ExtContext) error {
		if err := s.repo.Delete(ctx, ex, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
		}
		return s.audit.Create(ctx, ex, &models.AuditRecord{
			Action:   models.AuditActionNoteDeleted,
			OldValue: auditValue(n.Content),
			UserID:   actor.ID,
			CaseID:   &n.CaseID,
		})
	})
}

func (s *NoteService) ensureCaseAccess(ctx context.Context, actor models.AuthUser, caseID string) error {
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

func (s *NoteService) ensureNoteAccess(actor models.AuthUser, n *models.Note) error {
	if actor.Role == models.RoleAdmin || n.UserID == actor.ID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "note belongs to another user")
}
