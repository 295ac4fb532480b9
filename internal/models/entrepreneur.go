package models

import "time"

// Entrepreneur represents a program applicant. One entrepreneur may own
// several cases over time.
type Entrepreneur struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Affiliation  *string   `db:"affiliation" json:"affiliation,omitempty"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// EntrepreneurFilter captures filtering criteria for listing entrepreneurs.
type EntrepreneurFilter struct {
	Search string
	Skip   int
	Limit  int
}
