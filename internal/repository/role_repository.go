package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

// RoleRepository provides database access for the role catalog.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns all roles ordered by name.
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	const query = `SELECT id, name FROM roles ORDER BY name ASC`
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// FindByID returns a role by identifier.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	const query = `SELECT id, name FROM roles WHERE id = $1 LIMIT 1`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by id: %w", err)
	}
	return &role, nil
}

// FindByName returns a role by its exact name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	const query = `SELECT id, name FROM roles WHERE name = $1 LIMIT 1`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return &role, nil
}

// CountUsers returns how many users currently hold the given role.
func (r *RoleRepository) CountUsers(ctx context.Context, roleID string) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, roleID); err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}
	return total, nil
}

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, ex sqlx.ExtContext, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	const query = `INSERT INTO roles (id, name) VALUES (:id, :name)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Update renames a role.
func (r *RoleRepository) Update(ctx context.Context, ex sqlx.ExtContext, role *models.Role) error {
	const query = `UPDATE roles SET name = :name WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// Delete removes a role.
func (r *RoleRepository) Delete(ctx context.Context, ex sqlx.ExtContext, id string) error {
	const query = `DELETE FROM roles WHERE id = $1`
	if _, err := ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}
