package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

// AssignmentRepository provides database access for case assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, user_id, case_id, assigned_at FROM assignments WHERE id = $1 LIMIT 1`
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &a, nil
}

// ExistsPair reports whether the given staff member is already assigned to
// the given case.
func (r *AssignmentRepository) ExistsPair(ctx context.Context, userID, caseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM assignments WHERE user_id = $1 AND case_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, caseID); err != nil {
		return false, fmt.Errorf("check assignment pair: %w", err)
	}
	return exists, nil
}

// List returns assignments based on filters with total count.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	baseQuery := `FROM assignments WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.CaseID != "" {
		conditions = append(conditions, fmt.Sprintf("case_id = $%d", len(args)+1))
		args = append(args, filter.CaseID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf("SELECT id, user_id, case_id, assigned_at %s ORDER BY assigned_at DESC LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, ex sqlx.ExtContext, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, user_id, case_id, assigned_at) VALUES (:id, :user_id, :case_id, :assigned_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	const query = `DELETE FROM assignments WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
