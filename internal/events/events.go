package events

import "context"

// Stream carrying all report lifecycle events.
const StreamReport = "events:report"

// Event types
const (
	EventReportAssigned   = "report_assigned"
	EventReportUnassigned = "report_unassigned"
	EventReportReassigned = "report_reassigned"
	EventWorkNoteAdded    = "work_note_added"
	EventClosureRequested = "closure_requested"
	EventClosureApproved  = "closure_approved"
	EventClosureRejected  = "closure_rejected"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
