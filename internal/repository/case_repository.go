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

// CaseRepository provides database access for cases.
type CaseRepository struct {
	db *sqlx.DB
}

// NewCaseRepository creates a new instance of CaseRepository.
func NewCaseRepository(db *sqlx.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// FindByID returns a case by identifier.
func (r *CaseRepository) FindByID(ctx context.Context, id string) (*models.Case, error) {
	const query = `SELECT id, name, description, intake_data, consent, entrepreneur_id, convocatoria_id, state_id, created_at FROM cases WHERE id = $1 LIMIT 1`
	var c models.Case
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find case by id: %w", err)
	}
	return &c, nil
}

// FindSummaryByID returns a case by identifier with joined display names.
func (r *CaseRepository) FindSummaryByID(ctx context.Context, id string) (*models.CaseSummary, error) {
	const query = `SELECT c.id, c.name, c.description, c.intake_data, c.consent, s.name AS state_name, s.case_type, e.full_name AS entrepreneur_name, cv.name AS convocatoria_name, c.created_at
		FROM cases c
		JOIN case_states s ON s.id = c.state_id
		JOIN entrepreneurs e ON e.id = c.entrepreneur_id
		LEFT JOIN convocatorias cv ON cv.id = c.convocatoria_id
		WHERE c.id = $1 LIMIT 1`
	var summary models.CaseSummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find case summary by id: %w", err)
	}
	return &summary, nil
}

// List returns case summaries based on filters with total count. When
// AssignedUserID is set only cases assigned to that staff member match.
func (r *CaseRepository) List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	baseQuery := `FROM cases c
		JOIN case_states s ON s.id = c.state_id
		JOIN entrepreneurs e ON e.id = c.entrepreneur_id
		LEFT JOIN convocatorias cv ON cv.id = c.convocatoria_id
		WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StateID != "" {
		conditions = append(conditions, fmt.Sprintf("c.state_id = $%d", len(args)+1))
		args = append(args, filter.StateID)
	}
	if filter.StateName != "" {
		conditions = append(conditions, fmt.Sprintf("s.name = $%d", len(args)+1))
		args = append(args, filter.StateName)
	}
	if filter.CaseType != "" {
		conditions = append(conditions, fmt.Sprintf("s.case_type = $%d", len(args)+1))
		args = append(args, filter.CaseType)
	}
	if filter.EntrepreneurID != "" {
		conditions = append(conditions, fmt.Sprintf("c.entrepreneur_id = $%d", len(args)+1))
		args = append(args, filter.EntrepreneurID)
	}
	if filter.AssignedUserID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM assignments a WHERE a.case_id = c.id AND a.user_id = $%d)", len(args)+1))
		args = append(args, filter.AssignedUserID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf(`SELECT c.id, c.name, c.description, c.intake_data, c.consent, s.name AS state_name, s.case_type, e.full_name AS entrepreneur_name, cv.name AS convocatoria_name, c.created_at %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d`, baseQuery, limit, skip)

	var summaries []models.CaseSummary
	if err := r.db.SelectContext(ctx, &summaries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count cases: %w", err)
	}

	return summaries, total, nil
}

// Create inserts a new case.
func (r *CaseRepository) Create(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO cases (id, name, description, intake_data, consent, entrepreneur_id, convocatoria_id, state_id, created_at) VALUES (:id, :name, :description, :intake_data, :consent, :entrepreneur_id, :convocatoria_id, :state_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, c); err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

// Update updates mutable fields of a case. The state column has its own
// path through UpdateState.
func (r *CaseRepository) Update(ctx context.Context, ex sqlx.ExtContext, c *models.Case) error {
	const query = `UPDATE cases SET name = :name, description = :description, intake_data = :intake_data, consent = :consent, convocatoria_id = :convocatoria_id WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, c); err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	return nil
}

// UpdateState moves a case to another catalog state.
func (r *CaseRepository) UpdateState(ctx context.Context, ex sqlx.ExtContext, caseID, stateID string) error {
	const query = `UPDATE cases SET state_id = $2 WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, caseID, stateID); err != nil {
		return fmt.Errorf("update case state: %w", err)
	}
	return nil
}

// Delete removes a case.
func (r *CaseRepository) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	const query = `DELETE FROM cases WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	return nil
}
