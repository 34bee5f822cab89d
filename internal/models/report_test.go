package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{ReportStateOpen, ReportStateAssigned, true},
		{ReportStateAssigned, ReportStateInProgress, true},
		{ReportStateAssigned, ReportStateClosurePending, true},
		{ReportStateInProgress, ReportStateClosurePending, true},
		{ReportStateClosurePending, ReportStateClosed, true},

		// Unassignment reverts to open
		{ReportStateAssigned, ReportStateOpen, true},
		{ReportStateInProgress, ReportStateOpen, true},

		// Closure rejection returns to the prior active state
		{ReportStateClosurePending, ReportStateAssigned, true},
		{ReportStateClosurePending, ReportStateInProgress, true},

		// Dismissal
		{ReportStateOpen, ReportStateRejected, true},
		{ReportStateAssigned, ReportStateRejected, true},
		{ReportStateInProgress, ReportStateRejected, true},

		// Invalid transitions
		{ReportStateOpen, ReportStateInProgress, false},
		{ReportStateOpen, ReportStateClosurePending, false},
		{ReportStateOpen, ReportStateClosed, false},
		{ReportStateClosurePending, ReportStateOpen, false},
		{ReportStateClosurePending, ReportStateRejected, false},
		{ReportStateClosed, ReportStateOpen, false},
		{ReportStateClosed, ReportStateAssigned, false},
		{ReportStateRejected, ReportStateOpen, false},
		{"nonexistent", ReportStateAssigned, false},
		{ReportStateOpen, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatesHaveTransitionEntry(t *testing.T) {
	allStates := []string{
		ReportStateOpen, ReportStateAssigned, ReportStateInProgress,
		ReportStateClosurePending, ReportStateClosed, ReportStateRejected,
	}

	for _, state := range allStates {
		if _, ok := ValidReportTransitions[state]; !ok {
			t.Errorf("state %q missing from ValidReportTransitions map", state)
		}
	}
}

func TestIsActiveState(t *testing.T) {
	active := []string{ReportStateOpen, ReportStateAssigned, ReportStateInProgress}
	for _, s := range active {
		if !IsActiveState(s) {
			t.Errorf("IsActiveState(%q) = false, want true", s)
		}
	}
	inactive := []string{ReportStateClosurePending, ReportStateClosed, ReportStateRejected, "bogus"}
	for _, s := range inactive {
		if IsActiveState(s) {
			t.Errorf("IsActiveState(%q) = true, want false", s)
		}
	}
}

func TestIsValidNoteCategory(t *testing.T) {
	for _, c := range []string{NoteObservation, NoteProgress, NoteIncident, NoteResolution, NoteCorrection} {
		if !IsValidNoteCategory(c) {
			t.Errorf("IsValidNoteCategory(%q) = false, want true", c)
		}
	}
	if IsValidNoteCategory("rant") {
		t.Error("IsValidNoteCategory(\"rant\") = true, want false")
	}
}
