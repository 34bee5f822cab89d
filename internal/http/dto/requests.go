package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateReportRequest struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Priority    string  `json:"priority,omitempty"` // low / medium / high
}

type AssignRequest struct {
	StaffID int64   `json:"staff_id"`
	Note    *string `json:"note,omitempty"`
}

type ReassignRequest struct {
	StaffID       int64  `json:"staff_id"`
	Reason        string `json:"reason"`
	SuggestedType string `json:"suggested_type,omitempty"`
	KeepType      bool   `json:"keep_type,omitempty"`
}

type UpdateAssignmentNoteRequest struct {
	Note string `json:"note"`
}

type AddWorkNoteRequest struct {
	Content  string         `json:"content"`
	Category string         `json:"category,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type SaveDraftRequest struct {
	Content string `json:"content"`
}

type RequestClosureRequest struct {
	ClosureNotes   string   `json:"closure_notes"`
	Signature      string   `json:"signature"`
	EvidencePhotos []string `json:"evidence_photos,omitempty"`
}

type DecideClosureRequest struct {
	SupervisorNotes string `json:"supervisor_notes,omitempty"`
}
