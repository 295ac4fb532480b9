package models

import "time"

// Assignment links a staff user to a case they are responsible for. The
// same (user, case) pair must never be assigned twice; a case may hold
// several simultaneous assignees.
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CaseID     string    `db:"case_id" json:"case_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignmentFilter captures filtering criteria for listing assignments.
type AssignmentFilter struct {
	UserID string
	CaseID string
	Skip   int
	Limit  int
}
