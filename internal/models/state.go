package models

// CaseType tags a catalog state as belonging to the application intake or
// the incubated-project phase of the lifecycle. A state's type is fixed at
// creation; the same name under a different type is a distinct catalog row.
type CaseType string

const (
	CaseTypeApplication CaseType = "Application"
	CaseTypeProject     CaseType = "Project"
)

// CaseState represents a row of the case state catalog.
type CaseState struct {
	ID       string   `db:"id" json:"id"`
	Name     string   `db:"name" json:"name"`
	CaseType CaseType `db:"case_type" json:"case_type"`
}

// CaseStateFilter captures filtering criteria for listing catalog states.
type CaseStateFilter struct {
	CaseType string
	Skip     int
	Limit    int
}
