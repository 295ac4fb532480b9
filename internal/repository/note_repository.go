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

// NoteRepository provides database access for case notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new instance of NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// FindByID returns a note by identifier.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	const query = `SELECT id, content, case_id, user_id, created_at FROM notes WHERE id = $1 LIMIT 1`
	var n models.Note
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find note by id: %w", err)
	}
	return &n, nil
}

// List returns notes based on filters with total count.
func (r *NoteRepository) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error) {
	baseQuery := `FROM notes WHERE 1=1`
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

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	skip, limit := clampRange(filter.Skip, filter.Limit)
	listQuery := fmt.Sprintf("SELECT id, content, case_id, user_id, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, limit, skip)

	var notes []models.Note
	if err := r.db.SelectContext(ctx, &notes, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	return notes, total, nil
}

// Create inserts a new note.
func (r *NoteRepository) Create(ctx context.Context, ex sqlx.ExtContext, n *models.Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notes (id, content, case_id, user_id, created_at) VALUES (:id, :content, :case_id, :user_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, n); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Update updates the content of a note.
func (r *NoteRepository) Update(ctx context.Context, ex sqlx.ExtContext, n *models.Note) error {
	const query = `UPDATE notes SET content = :content WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, n); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// Delete removes a note.
func (r *NoteRepository) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	const query = `DELETE FROM notes WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
