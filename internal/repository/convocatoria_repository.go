package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

// ConvocatoriaRepository provides database access for intake cycles.
type ConvocatoriaRepository struct {
	db *sqlx.DB
}

// NewConvocatoriaRepository creates a new instance of ConvocatoriaRepository.
func NewConvocatoriaRepository(db *sqlx.DB) *ConvocatoriaRepository {
	return &ConvocatoriaRepository{db: db}
}

// FindByID returns a convocatoria by identifier.
func (r *ConvocatoriaRepository) FindByID(ctx context.Context, id string) (*models.Convocatoria, error) {
	const query = `SELECT id, name, closes_at FROM convocatorias WHERE id = $1 LIMIT 1`
	var conv models.Convocatoria
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find convocatoria by id: %w", err)
	}
	return &conv, nil
}

// List returns convocatorias with total count.
func (r *ConvocatoriaRepository) List(ctx context.Context, skip, limit int) ([]models.Convocatoria, int, error) {
	skip, limit = clampRange(skip, limit)
	listQuery := fmt.Sprintf(`SELECT id, name, closes_at FROM convocatorias ORDER BY closes_at DESC NULLS LAST, name ASC LIMIT %d OFFSET %d`, limit, skip)

	var convs []models.Convocatoria
	if err := r.db.SelectContext(ctx, &convs, listQuery); err != nil {
		return nil, 0, fmt.Errorf("list convocatorias: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM convocatorias`); err != nil {
		return nil, 0, fmt.Errorf("count convocatorias: %w", err)
	}

	return convs, total, nil
}

// CountCases returns how many cases reference the given convocatoria.
func (r *ConvocatoriaRepository) CountCases(ctx context.Context, convocatoriaID string) (int, error) {
	const query = `SELECT COUNT(*) FROM cases WHERE convocatoria_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, convocatoriaID); err != nil {
		return 0, fmt.Errorf("count convocatoria cases: %w", err)
	}
	return total, nil
}

// Create inserts a new convocatoria.
func (r *ConvocatoriaRepository) Create(ctx context.Context, ex sqlx.ExtContext, conv *models.Convocatoria) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	const query = `INSERT INTO convocatorias (id, name, closes_at) VALUES (:id, :name, :closes_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, conv); err != nil {
		return fmt.Errorf("create convocatoria: %w", err)
	}
	return nil
}

// Update updates mutable fields of a convocatoria.
func (r *ConvocatoriaRepository) Update(ctx context.Context, ex sqlx.ExtContext, conv *models.Convocatoria) error {
	const query = `UPDATE convocatorias SET name = :name, closes_at = :closes_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, conv); err != nil {
		return fmt.Errorf("update convocatoria: %w", err)
	}
	return nil
}

// Delete removes a convocatoria.
func (r *ConvocatoriaRepository) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	const query = `DELETE FROM convocatorias WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete convocatoria: %w", err)
	}
	return nil
}
