package models

import "time"

// Closure decision values
const (
	ClosureDecisionPending  = "pending"
	ClosureDecisionApproved = "approved"
	ClosureDecisionRejected = "rejected"
)

// PendingClosure is a staff member's request to close a report, awaiting a
// supervisor decision. PriorState records where the report came from so a
// rejection can send it back there.
type PendingClosure struct {
	ID              int64      `json:"id"`
	ReportID        int64      `json:"report_id"`
	RequesterID     int64      `json:"requester_id"`
	ClosureNotes    string     `json:"closure_notes"`
	Signature       string     `json:"signature"`
	EvidencePhotos  []string   `json:"evidence_photos,omitempty"`
	PriorState      string     `json:"prior_state"`
	Decision        string     `json:"decision"`
	SupervisorNotes *string    `json:"supervisor_notes,omitempty"`
	ReviewedBy      *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type PendingClosureDetail struct {
	PendingClosure
	ReportType          string `json:"report_type"`
	ReportDescription   string `json:"report_description"`
	RequesterName       string `json:"requester_name"`
	RequesterEmail      string `json:"requester_email"`
	RequesterDepartment string `json:"requester_department"`
}
