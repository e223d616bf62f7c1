package engine

import "exam-engine/internal/models"

// AdvanceOutcome names what a single press of the next control did.
type AdvanceOutcome string

const (
	// OutcomeRevealed means the first press in practice or study mode showed
	// feedback for the current question; the pointer did not move.
	OutcomeRevealed AdvanceOutcome = "revealed"
	// OutcomeNeedSelection means a check was requested with nothing picked.
	OutcomeNeedSelection AdvanceOutcome = "need_selection"
	// OutcomeMoved means the pointer moved to the next question within the
	// current subject.
	OutcomeMoved AdvanceOutcome = "moved"
	// OutcomeSubjectChanged means the pointer rolled into the next subject.
	OutcomeSubjectChanged AdvanceOutcome = "subject_changed"
	// OutcomeBlocked means the entitlement gate refused the move.
	OutcomeBlocked AdvanceOutcome = "blocked"
	// OutcomeSubmit means the session reached its end and wants submitting.
	OutcomeSubmit AdvanceOutcome = "submit"
)

// AdvanceResult is what Advance reports back to the caller. Subject is the
// current subject after the call.
type AdvanceResult struct {
	Outcome AdvanceOutcome         `json:"outcome"`
	Subject *models.SubjectSession `json:"-"`
}
