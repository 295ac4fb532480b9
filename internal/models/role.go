package models

// RoleName identifies one of the staff roles known to the RBAC layer.
// The roles table may hold additional rows; those simply never match an
// endpoint allow-list.
type RoleName string

const (
	RoleAdmin       RoleName = "Admin"
	RoleCoordinator RoleName = "Coordinator"
	RoleTutor       RoleName = "Tutor"
)

// Role represents a row of the roles table.
type Role struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
