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

// ProgramRepository provides database access for support programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new instance of ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// FindByID returns a program by identifier.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, name, active FROM programs WHERE id = $1 LIMIT 1`
	var p models.Program
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program by id: %w", err)
	}
	return &p, nil
}

// List returns programs with total count.
func (r *ProgramRepository) List(ctx context.Context, activeOnly bool, skip, limit int) ([]models.Program, int, error) {
	baseQuery := `FROM programs WHERE 1=1`
	var conditions []string

	if activeOnly {
		conditions = append(conditions, "active = TRUE")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit = clampRange(skip, limit)
	listQuery := fmt.Sprintf("SELECT id, name, active %s ORDER BY name ASC LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, listQuery); err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}

	return programs, total, nil
}

// Create inserts a new program.
func (r *ProgramRepository) Create(ctx context.Context, p *models.Program) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const query = `INSERT INTO programs (id, name, active) VALUES (:id, :name, :active)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// Update updates mutable fields of a program.
func (r *ProgramRepository) Update(ctx context.Context, p *models.Program) error {
	const query = `UPDATE programs SET name = :name, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return nil
}

// Delete removes a program.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM programs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return nil
}

// CountSupports returns how many supports reference the given program.
func (r *ProgramRepository) CountSupports(ctx context.Context, programID string) (int, error) {
	const query = `SELECT COUNT(*) FROM supports WHERE program_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, programID); err != nil {
		return 0, fmt.Errorf("count program supports: %w", err)
	}
	return total, nil
}
