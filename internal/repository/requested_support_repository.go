package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

// RequestedSupportRepository provides database access for support requests
// captured at intake.
type RequestedSupportRepository struct {
	db *sqlx.DB
}

// NewRequestedSupportRepository creates a new instance of RequestedSupportRepository.
func NewRequestedSupportRepository(db *sqlx.DB) *RequestedSupportRepository {
	return &RequestedSupportRepository{db: db}
}

// FindByID returns a requested support by identifier.
func (r *RequestedSupportRepository) FindByID(ctx context.Context, id string) (*models.RequestedSupport, error) {
	const query = `SELECT id, category, case_id FROM requested_supports WHERE id = $1 LIMIT 1`
	var rs models.RequestedSupport
	if err := r.db.GetContext(ctx, &rs, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find requested support by id: %w", err)
	}
	return &rs, nil
}

// ListByCase returns all requested supports for a case.
func (r *RequestedSupportRepository) ListByCase(ctx context.Context, caseID string) ([]models.RequestedSupport, error) {
	const query = `SELECT id, category, case_id FROM requested_supports WHERE case_id = $1 ORDER BY category ASC`
	var requests []models.RequestedSupport
	if err := r.db.SelectContext(ctx, &requests, query, caseID); err != nil {
		return nil, fmt.Errorf("list requested supports: %w", err)
	}
	return requests, nil
}

// Create inserts a new requested support.
func (r *RequestedSupportRepository) Create(ctx context.Context, rs *models.RequestedSupport) error {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	const query = `INSERT INTO requested_supports (id, category, case_id) VALUES (:id, :category, :case_id)`
	if _, err := r.db.NamedExecContext(ctx, query, rs); err != nil {
		return fmt.Errorf("create requested support: %w", err)
	}
	return nil
}

// Update changes the category of a requested support. The case reference
// never moves.
func (r *RequestedSupportRepository) Update(ctx context.Context, rs *models.RequestedSupport) error {
	const query = `UPDATE requested_supports SET category = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, rs.ID, rs.Category); err != nil {
		return fmt.Errorf("update requested support: %w", err)
	}
	return nil
}

// Delete removes a requested support.
func (r *RequestedSupportRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM requested_supports WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete requested support: %w", err)
	}
	return nil
}
