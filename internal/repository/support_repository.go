package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

// SupportRepository provides database access for granted supports.
type SupportRepository struct {
	db *sqlx.DB
}

// NewSupportRepository creates a new instance of SupportRepository.
func NewSupportRepository(db *sqlx.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

// FindByID returns a support by identifier.
func (r *SupportRepository) FindByID(ctx context.Context, id string) (*models.Support, error) {
	const query = `SELECT id, support_type, start_date, end_date, case_id, program_id FROM supports WHERE id = $1 LIMIT 1`
	var s models.Support
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find support by id: %w", err)
	}
	return &s, nil
}

// List returns supports based on filters with total count.
func (r *SupportRepository) List(ctx context.Context, filter models.SupportFilter) ([]models.Support, int, error) {
	baseQuery := `FROM supports WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CaseID != "" {
		conditions = append(conditions, fmt.Sprintf("case_id = $%d", len(args)+1))
		args = append(args, filter.CaseID)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf("SELECT id, support_type, start_date, end_date, case_id, program_id %s ORDER BY start_date DESC NULLS LAST LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var supports []models.Support
	if err := r.db.SelectContext(ctx, &supports, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list supports: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count supports: %w", err)
	}

	return supports, total, nil
}

// Create inserts a new support.
func (r *SupportRepository) Create(ctx context.Context, ex sqlx.ExtContext, s *models.Support) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const query = `INSERT INTO supports (id, support_type, start_date, end_date, case_id, program_id) VALUES (:id, :support_type, :start_date, :end_date, :case_id, :program_id)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, s); err != nil {
		return fmt.Errorf("create support: %w", err)
	}
	return nil
}

// Update updates mutable fields of a support.
func (r *SupportRepository) Update(ctx context.Context, ex sqlx.ExtContext, s *models.Support) error {
	const query = `UPDATE supports SET support_type = :support_type, start_date = :start_date, end_date = :end_date, program_id = :program_id WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, s); err != nil {
		return fmt.Errorf("update support: %w", err)
	}
	return nil
}

// Delete removes a support.
func (r *SupportRepository) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	const query = `DELETE FROM supports WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete support: %w", err)
	}
	return nil
}
