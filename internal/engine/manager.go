// Package engine is the quiz session state machine. It owns subject
// ordering, question pointers, answer records and the submission lifecycle,
// and it is deliberately free of I/O: the service layer runs the clock and
// the network calls around it.
package engine

import (
	"errors"

	"exam-engine/internal/entitlement"
	"exam-engine/internal/models"
)

var (
	// ErrNotInProgress is returned when a navigation or answer call reaches
	// a session that is loading, submitting or already closed.
	ErrNotInProgress = errors.New("session is not in progress")
	// ErrAnswerLocked is returned when a selection arrives after feedback
	// has been revealed for the current question in practice or study mode.
	ErrAnswerLocked = errors.New("answer is locked after checking")
	// ErrNoQuestion is returned when the session holds no current question.
	ErrNoQuestion = errors.New("no current question")
	// ErrBadOption is returned for an option index outside the question.
	ErrBadOption = errors.New("option index out of range")
	// ErrBadSubject is returned for a subject index outside the session.
	ErrBadSubject = errors.New("subject index out of range")
)

// NewSession assembles an in-progress session from normalized subject data.
// Exam mode arms the countdown clock; practice and study run without one.
func NewSession(id, userID string, mode models.Mode, subjects []*models.SubjectSession, durationMinutes int) *models.QuizSession {
	s := &models.QuizSession{
		ID:       id,
		UserID:   userID,
		Mode:     mode,
		Subjects: subjects,
		Status:   models.StatusInProgress,
	}
	if mode == models.ModeExam {
		s.TotalDurationSeconds = durationMinutes * 60
		s.RemainingSeconds = s.TotalDurationSeconds
	}
	return s
}

// SelectOption records the answer for the current question. Re-answering is
// allowed any number of times before checking; once feedback is revealed in
// an untimed mode the selection is locked so a revealed answer cannot be
// changed.
func SelectOption(s *models.QuizSession, optionIndex int) error {
	if s.Status != models.StatusInProgress {
		return ErrNotInProgress
	}
	if s.Checked && s.Mode.Untimed() {
		return ErrAnswerLocked
	}
	sub := s.CurrentSubject()
	q := s.CurrentQuestion()
	if sub == nil || q == nil {
		return ErrNoQuestion
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return ErrBadOption
	}
	sub.Answers[sub.CurrentIndex] = optionIndex
	return nil
}

// Advance runs one press of the next control. In practice and study modes
// the first press on an answered question reveals feedback and holds
// position; the second press moves on. Forward movement consults the
// entitlement gate with the cumulative number of questions seen, then moves
// within the subject, rolls into the next subject, or requests submission
// from the last question of the last subject.
func Advance(s *models.QuizSession, premium bool) (AdvanceResult, error) {
	if s.Status != models.StatusInProgress {
		return AdvanceResult{}, ErrNotInProgress
	}
	sub := s.CurrentSubject()
	if sub == nil || s.CurrentQuestion() == nil {
		return AdvanceResult{}, ErrNoQuestion
	}

	if s.Mode.Untimed() && !s.Checked {
		if _, answered := sub.Answers[sub.CurrentIndex]; !answered {
			return AdvanceResult{Outcome: OutcomeNeedSelection, Subject: sub}, nil
		}
		s.Checked = true
		s.Revealed = true
		return AdvanceResult{Outcome: OutcomeRevealed, Subject: sub}, nil
	}

	if !entitlement.CanAdvance(s.QuestionsSeen(), premium) {
		return AdvanceResult{Outcome: OutcomeBlocked, Subject: sub}, nil
	}

	if sub.CurrentIndex < len(sub.Questions)-1 {
		sub.CurrentIndex++
		resetCheckState(s)
		return AdvanceResult{Outcome: OutcomeMoved, Subject: sub}, nil
	}
	if s.CurrentSubjectIndex < len(s.Subjects)-1 {
		s.CurrentSubjectIndex++
		resetCheckState(s)
		return AdvanceResult{Outcome: OutcomeSubjectChanged, Subject: s.CurrentSubject()}, nil
	}
	return AdvanceResult{Outcome: OutcomeSubmit, Subject: sub}, nil
}

// Back moves to the previous question within the current subject. It never
// crosses a subject boundary and never consults the entitlement gate.
func Back(s *models.QuizSession) error {
	if s.Status != models.StatusInProgress {
		return ErrNotInProgress
	}
	sub := s.CurrentSubject()
	if sub == nil {
		return ErrNoQuestion
	}
	if sub.CurrentIndex > 0 {
		sub.CurrentIndex--
		resetCheckState(s)
	}
	return nil
}

// JumpToSubject points the session at another subject directly, the way the
// subject tabs do. The jump is not forward navigation over a question, so
// the gate is not consulted.
func JumpToSubject(s *models.QuizSession, index int) error {
	if s.Status != models.StatusInProgress {
		return ErrNotInProgress
	}
	if index < 0 || index >= len(s.Subjects) {
		return ErrBadSubject
	}
	s.CurrentSubjectIndex = index
	resetCheckState(s)
	return nil
}

// ToggleReveal flips the study-mode show-answer state for the current
// question without checking it.
func ToggleReveal(s *models.QuizSession) error {
	if s.Status != models.StatusInProgress {
		return ErrNotInProgress
	}
	s.Revealed = !s.Revealed
	return nil
}

// Tick advances the exam clock by one second, charging the elapsed second to
// the current subject. It reports true when the clock reaches zero and the
// session must submit. Untimed modes never tick.
func Tick(s *models.QuizSession) bool {
	if s.Mode != models.ModeExam || s.Status != models.StatusInProgress {
		return false
	}
	if s.RemainingSeconds <= 0 {
		return false
	}
	s.RemainingSeconds--
	if sub := s.CurrentSubject(); sub != nil {
		sub.ElapsedSeconds++
	}
	return s.RemainingSeconds == 0
}

// BeginSubmit moves the session into the submitting state. It reports false
// when a submission is already underway or the session is closed, which
// makes repeated submit calls harmless. The check state is left untouched so
// a failed submission's revert keeps a revealed answer locked.
func BeginSubmit(s *models.QuizSession) bool {
	if s.Status != models.StatusInProgress {
		return false
	}
	s.Status = models.StatusSubmitting
	return true
}

// FinishSubmit marks a submitting session completed.
func FinishSubmit(s *models.QuizSession) {
	if s.Status == models.StatusSubmitting {
		s.Status = models.StatusCompleted
		resetCheckState(s)
	}
}

// FailSubmit returns a submitting session to in-progress after a failed
// network submission, so the user's answers survive and a retry stays
// possible.
func FailSubmit(s *models.QuizSession) {
	if s.Status == models.StatusSubmitting {
		s.Status = models.StatusInProgress
	}
}

func resetCheckState(s *models.QuizSession) {
	s.Checked = false
	s.Revealed = false
}
