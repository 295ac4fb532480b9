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

// StateRepository provides database access for the case state catalog.
type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository creates a new instance of StateRepository.
func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

// FindByID returns a catalog state by identifier.
func (r *StateRepository) FindByID(ctx context.Context, id string) (*models.CaseState, error) {
	const query = `SELECT id, name, case_type FROM case_states WHERE id = $1 LIMIT 1`
	var state models.CaseState
	if err := r.db.GetContext(ctx, &state, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find state by id: %w", err)
	}
	return &state, nil
}

// FindByNameAndType returns the catalog state with the given name and case
// type. The pair is the catalog's natural key.
func (r *StateRepository) FindByNameAndType(ctx context.Context, name string, caseType models.CaseType) (*models.CaseState, error) {
	const query = `SELECT id, name, case_type FROM case_states WHERE name = $1 AND case_type = $2 LIMIT 1`
	var state models.CaseState
	if err := r.db.GetContext(ctx, &state, query, name, caseType); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find state by name and type: %w", err)
	}
	return &state, nil
}

// List returns catalog states based on filters with total count.
func (r *StateRepository) List(ctx context.Context, filter models.CaseStateFilter) ([]models.CaseState, int, error) {
	baseQuery := `FROM case_states WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CaseType != "" {
		conditions = append(conditions, fmt.Sprintf("case_type = $%d", len(args)+1))
		args = append(args, filter.CaseType)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf("SELECT id, name, case_type %s ORDER BY case_type ASC, name ASC LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var states []models.CaseState
	if err := r.db.SelectContext(ctx, &states, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list states: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count states: %w", err)
	}

	return states, total, nil
}

// Create inserts a new catalog state.
func (r *StateRepository) Create(ctx context.Context, state *models.CaseState) error {
	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	const query = `INSERT INTO case_states (id, name, case_type) VALUES (:id, :name, :case_type)`
	if _, err := r.db.NamedExecContext(ctx, query, state); err != nil {
		return fmt.Errorf("create state: %w", err)
	}
	return nil
}

// Update renames a catalog state.
func (r *StateRepository) Update(ctx context.Context, state *models.CaseState) error {
	const query = `UPDATE case_states SET name = :name WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, state); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	return nil
}

// Delete removes a catalog state.
func (r *StateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM case_states WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// CountCases returns how many cases currently sit in the given state.
func (r *StateRepository) CountCases(ctx context.Context, stateID string) (int, error) {
	const query = `SELECT COUNT(*) FROM cases WHERE state_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, stateID); err != nil {
		return 0, fmt.Errorf("count state cases: %w", err)
	}
	return total, nil
}
