package models

import "time"

// Work log note categories
const (
	NoteObservation = "observation"
	NoteProgress    = "progress"
	NoteIncident    = "incident"
	NoteResolution  = "resolution"
	// NoteCorrection amends an earlier note. Notes are never deleted or
	// edited; corrections are appended instead.
	NoteCorrection = "correction"
)

func IsValidNoteCategory(category string) bool {
	switch category {
	case NoteObservation, NoteProgress, NoteIncident, NoteResolution, NoteCorrection:
		return true
	}
	return false
}

// WorkLogEntry is an append-only note by an assigned staff member.
type WorkLogEntry struct {
	ID        int64          `json:"id"`
	ReportID  int64          `json:"report_id"`
	AuthorID  int64          `json:"author_id"`
	Content   string         `json:"content"`
	Category  string         `json:"category"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type WorkLogEntryDetail struct {
	WorkLogEntry
	AuthorName       string `json:"author_name"`
	AuthorEmail      string `json:"author_email"`
	AuthorDepartment string `json:"author_department"`
}

// WorkLogSummary aggregates a report's work log per category.
type WorkLogSummary struct {
	TotalNotes int                    `json:"total_notes"`
	ByCategory []WorkLogCategoryCount `json:"by_category"`
}

type WorkLogCategoryCount struct {
	Category  string    `json:"category"`
	Count     int       `json:"count"`
	Authors   int       `json:"authors"`
	FirstNote time.Time `json:"first_note"`
	LastNote  time.Time `json:"last_note"`
}

// DraftNote is unpublished working text, one per (report, author). It is the
// only mutable record in the core: saving again overwrites the previous draft.
type DraftNote struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
