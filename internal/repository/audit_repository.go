package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

// AuditRepository provides database access for the append-only audit trail.
// There is no update or delete path.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit record. It runs on the caller's executor so the
// record commits or rolls back together with the mutation it documents.
func (r *AuditRepository) Create(ctx context.Context, ex sqlx.ExtContext, rec *models.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_records (id, action, old_value, new_value, user_id, case_id, created_at) VALUES (:id, :action, :old_value, :new_value, :user_id, :case_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, rec); err != nil {
		return fmt.Errorf("create audit record: %w", err)
	}
	return nil
}

// List returns audit records based on filters with total count. The action
// filter matches as a case-insensitive substring.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, int, error) {
	baseQuery := `FROM audit_records WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CaseID != "" {
		conditions = append(conditions, fmt.Sprintf("case_id = $%d", len(args)+1))
		args = append(args, filter.CaseID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(action) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Action)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf("SELECT id, action, old_value, new_value, user_id, case_id, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var records []models.AuditRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	return records, total, nil
}
