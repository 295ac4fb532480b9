package models

// Program is a support offering (mentorship track, funding line) that can
// be granted to a case via a Support record.
type Program struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`
}
