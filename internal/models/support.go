package models

import "time"

// Support records a program benefit granted to a case.
type Support struct {
	ID          string     `db:"id" json:"id"`
	SupportType string     `db:"support_type" json:"support_type"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	CaseID      string     `db:"case_id" json:"case_id"`
	ProgramID   string     `db:"program_id" json:"program_id"`
}

// SupportFilter captures filtering criteria for listing supports.
type SupportFilter struct {
	CaseID    string
	ProgramID string
	Skip      int
	Limit     int
}

// RequestedSupport is a free-text support category a case asked for,
// independent of any support actually granted.
type RequestedSupport struct {
	ID       string `db:"id" json:"id"`
	Category string `db:"category" json:"category"`
	CaseID   string `db:"case_id" json:"case_id"`
}
