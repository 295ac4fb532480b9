package models

import "time"

// Audit action labels. The state change label is the compliance-relevant
// one; tests pin its exact value.
const (
	AuditActionLogin               = "login"
	AuditActionLogout              = "logout"
	AuditActionCaseCreated         = "case created"
	AuditActionCaseUpdated         = "case updated"
	AuditActionCaseDeleted         = "case deleted"
	AuditActionStateChange         = "state change"
	AuditActionStaffAssigned       = "staff assigned"
	AuditActionAssignmentRemoved   = "assignment removed"
	AuditActionSupportGranted      = "support granted"
	AuditActionSupportUpdated      = "support updated"
	AuditActionSupportRemoved      = "support removed"
	AuditActionNoteCreated         = "note created"
	AuditActionNoteUpdated         = "note updated"
	AuditActionNoteDeleted         = "note deleted"
	AuditActionRoleCreated         = "role created"
	AuditActionRoleUpdated         = "role updated"
	AuditActionRoleDeleted         = "role deleted"
	AuditActionConvocatoriaCreated = "convocatoria created"
	AuditActionConvocatoriaUpdated = "convocatoria updated"
	AuditActionConvocatoriaDeleted = "convocatoria deleted"
)

// AuditRecord is an immutable ledger entry documenting a mutation's actor,
// action and before/after values. CaseID is nil for system-wide actions
// such as role management. The API exposes no write path for audit records.
type AuditRecord struct {
	ID        string    `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	OldValue  *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue  *string   `db:"new_value" json:"new_value,omitempty"`
	UserID    string    `db:"user_id" json:"user_id"`
	CaseID    *string   `db:"case_id" json:"case_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter captures filtering criteria for the read-only audit surface.
type AuditFilter struct {
	CaseID string
	UserID string
	Action string
	Skip   int
	Limit  int
}
