package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Case is the central entity: an application or project tracked through a
// state lifecycle. Entrepreneur and state are required, convocatoria is
// optional.
type Case struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Description    *string        `db:"description" json:"description,omitempty"`
	IntakeData     types.JSONText `db:"intake_data" json:"intake_data,omitempty"`
	Consent        bool           `db:"consent" json:"consent"`
	EntrepreneurID string         `db:"entrepreneur_id" json:"entrepreneur_id"`
	ConvocatoriaID *string        `db:"convocatoria_id" json:"convocatoria_id,omitempty"`
	StateID        string         `db:"state_id" json:"state_id"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// CaseSummary is the listing shape: foreign keys resolved to display names
// in a single joined query.
type CaseSummary struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Description  *string        `db:"description" json:"description,omitempty"`
	IntakeData   types.JSONText `db:"intake_data" json:"intake_data,omitempty"`
	Consent      bool           `db:"consent" json:"consent"`
	State        string         `db:"state_name" json:"state"`
	CaseType     CaseType       `db:"case_type" json:"case_type"`
	Entrepreneur string         `db:"entrepreneur_name" json:"entrepreneur"`
	Convocatoria *string        `db:"convocatoria_name" json:"convocatoria,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// CaseFilter captures filtering criteria for listing cases. AssignedUserID
// restricts the result to cases the given staff member is assigned to; the
// service sets it for Tutor callers.
type CaseFilter struct {
	StateID        string
	StateName      string
	CaseType       string
	EntrepreneurID string
	AssignedUserID string
	Skip           int
	Limit          int
}
