package models

import "time"

// Note is a free-text annotation authored by a staff user against a case.
type Note struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	CaseID    string    `db:"case_id" json:"case_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NoteFilter captures filtering criteria for listing notes.
type NoteFilter struct {
	CaseID string
	UserID string
	Skip   int
	Limit  int
}
