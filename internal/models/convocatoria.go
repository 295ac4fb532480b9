package models

import "time"

// Convocatoria is a call-for-proposals / intake cycle that cases may
// optionally belong to.
type Convocatoria struct {
	ID       string     `db:"id" json:"id"`
	Name     string     `db:"name" json:"name"`
	ClosesAt *time.Time `db:"closes_at" json:"closes_at,omitempty"`
}
