package models

import "time"

// User represents a staff member stored in the users table. Users are never
// hard-deleted; deactivation keeps assignment and audit history intact.
type User struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Active       bool      `db:"active" json:"active"`
	RoleID       string    `db:"role_id" json:"role_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserWithRole joins a user row with its role name for listings and
// identity resolution.
type UserWithRole struct {
	User
	RoleName RoleName `db:"role_name" json:"role"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	RoleID string
	Active *bool
	Search string
	Skip   int
	Limit  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Skip       int `json:"skip"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
}
