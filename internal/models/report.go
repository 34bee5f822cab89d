package models

import "time"

// Report lifecycle states
const (
	ReportStateOpen           = "open"
	ReportStateAssigned       = "assigned"
	ReportStateInProgress     = "in_progress"
	ReportStateClosurePending = "closure_pending"
	ReportStateClosed         = "closed"
	ReportStateRejected       = "rejected"
)

// Valid state transitions: from -> []to
//
// A report is open iff it has zero assignments; the first assignment moves it
// to assigned, and removing the last one moves it back. closure_pending can
// return to either prior active state when a supervisor rejects the closure.
var ValidReportTransitions = map[string][]string{
	ReportStateOpen:           {ReportStateAssigned, ReportStateRejected},
	ReportStateAssigned:       {ReportStateOpen, ReportStateInProgress, ReportStateClosurePending, ReportStateRejected},
	ReportStateInProgress:     {ReportStateOpen, ReportStateClosurePending, ReportStateRejected},
	ReportStateClosurePending: {ReportStateClosed, ReportStateAssigned, ReportStateInProgress},
	ReportStateClosed:         {},
	ReportStateRejected:       {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidReportTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsActiveState reports whether work can still happen on the report.
func IsActiveState(state string) bool {
	switch state {
	case ReportStateOpen, ReportStateAssigned, ReportStateInProgress:
		return true
	}
	return false
}

// ReportFilter narrows report listings. Zero values mean no filtering on
// that field.
type ReportFilter struct {
	State      string
	Department string
	Type       string
	Limit      int
	Offset     int
}

type Report struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	State       string    `json:"state"`
	Department  string    `json:"department"`
	Priority    string    `json:"priority"`
	Locality    *string   `json:"locality,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
