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

// EntrepreneurRepository provides database access for entrepreneur records.
type EntrepreneurRepository struct {
	db *sqlx.DB
}

// NewEntrepreneurRepository creates a new instance of EntrepreneurRepository.
func NewEntrepreneurRepository(db *sqlx.DB) *EntrepreneurRepository {
	return &EntrepreneurRepository{db: db}
}

// FindByID returns an entrepreneur by identifier.
func (r *EntrepreneurRepository) FindByID(ctx context.Context, id string) (*models.Entrepreneur, error) {
	const query = `SELECT id, full_name, email, phone, affiliation, registered_at FROM entrepreneurs WHERE id = $1 LIMIT 1`
	var ent models.Entrepreneur
	if err := r.db.GetContext(ctx, &ent, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find entrepreneur by id: %w", err)
	}
	return &ent, nil
}

// List returns entrepreneurs based on filters with total count.
func (r *EntrepreneurRepository) List(ctx context.Context, filter models.EntrepreneurFilter) ([]models.Entrepreneur, int, error) {
	baseQuery := `FROM entrepreneurs WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf("SELECT id, full_name, email, phone, affiliation, registered_at %s ORDER BY registered_at DESC LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var ents []models.Entrepreneur
	if err := r.db.SelectContext(ctx, &ents, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list entrepreneurs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count entrepreneurs: %w", err)
	}

	return ents, total, nil
}

// Create inserts a new entrepreneur.
func (r *EntrepreneurRepository) Create(ctx context.Context, ent *models.Entrepreneur) error {
	if ent.ID == "" {
		ent.ID = uuid.NewString()
	}
	if ent.RegisteredAt.IsZero() {
		ent.RegisteredAt = time.Now().UTC()
	}
	const query = `INSERT INTO entrepreneurs (id, full_name, email, phone, affiliation, registered_at) VALUES (:id, :full_name, :email, :phone, :affiliation, :registered_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ent); err != nil {
		return fmt.Errorf("create entrepreneur: %w", err)
	}
	return nil
}

// Update updates mutable fields of an entrepreneur.
func (r *EntrepreneurRepository) Update(ctx context.Context, ent *models.Entrepreneur) error {
	const query = `UPDATE entrepreneurs SET full_name = :full_name, email = :email, phone = :phone, affiliation = :affiliation WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, ent); err != nil {
		return fmt.Errorf("update entrepreneur: %w", err)
	}
	return nil
}

// Delete removes an entrepreneur.
func (r *EntrepreneurRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM entrepreneurs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete entrepreneur: %w", err)
	}
	return nil
}
