package models

import "time"

// Audit change kinds
const (
	ChangeAssign      = "assign"
	ChangeUnassign    = "unassign"
	ChangeTypeChange  = "type_change"
	ChangeStateChange = "state_change"
	ChangeNoteAdded   = "note_added"
)

// Entity kinds referenced by audit entries
const (
	EntityReport = "report"
)

// AuditEntry is an immutable record of a single attributable change. Entries
// are only ever inserted; one semantic change produces exactly one entry.
type AuditEntry struct {
	ID         int64          `json:"id"`
	Entity     string         `json:"entity"`
	EntityID   int64          `json:"entity_id"`
	ActorID    int64          `json:"actor_id"`
	ChangeKind string         `json:"change_kind"`
	Field      string         `json:"field"`
	OldValue   *string        `json:"old_value"`
	NewValue   *string        `json:"new_value"`
	Reason     string         `json:"reason"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditEntryDetail adds the actor's identity for history reads.
type AuditEntryDetail struct {
	AuditEntry
	ActorName       string `json:"actor_name"`
	ActorEmail      string `json:"actor_email"`
	ActorRole       string `json:"actor_role"`
	ActorDepartment string `json:"actor_department"`
}
