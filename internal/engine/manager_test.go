package engine

import (
	"testing"

	"exam-engine/internal/models"
)

func makeQuestion(id, correctKey string, optionTexts ...string) models.Question {
	q := models.Question{ID: id, Text: "question " + id, CorrectOption: correctKey, Explanation: "explanation for " + id}
	for _, text := range optionTexts {
		q.Options = append(q.Options, models.Option{Text: text})
	}
	return q
}

func makeSubject(id string, questionCount int) *models.SubjectSession {
	sub := &models.SubjectSession{
		SubjectID: id,
		Name:      "Subject " + id,
		Year:      2023,
		Answers:   map[int]int{},
	}
	for i := 0; i < questionCount; i++ {
		sub.Questions = append(sub.Questions, makeQuestion(id+"-q"+models.OptionKey(i), "a", "first", "second"))
	}
	return sub
}

func TestPracticeCheckThenAdvance(t *testing.T) {
	s := NewSession("s1", "u1", models.ModePractice, []*models.SubjectSession{makeSubject("math", 3)}, 0)

	// Check with nothing selected holds position.
	res, err := Advance(s, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeNeedSelection {
		t.Fatalf("expected need_selection, got %s", res.Outcome)
	}

	if err := SelectOption(s, 1); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	// First press reveals feedback without moving.
	res, _ = Advance(s, true)
	if res.Outcome != OutcomeRevealed {
		t.Fatalf("expected revealed, got %s", res.Outcome)
	}
	if s.CurrentSubject().CurrentIndex != 0 {
		t.Errorf("pointer moved during reveal")
	}
	if !s.Checked {
		t.Errorf("expected checked flag set")
	}

	// Revealed answers are locked.
	if err := SelectOption(s, 0); err != ErrAnswerLocked {
		t.Errorf("expected ErrAnswerLocked, got %v", err)
	}

	// Second press moves on and clears the check state.
	res, _ = Advance(s, true)
	if res.Outcome != OutcomeMoved {
		t.Fatalf("expected moved, got %s", res.Outcome)
	}
	if s.CurrentSubject().CurrentIndex != 1 {
		t.Errorf("expected pointer at 1, got %d", s.CurrentSubject().CurrentIndex)
	}
	if s.Checked {
		t.Errorf("expected checked flag cleared after moving")
	}
}

func TestExamAdvanceMovesImmediately(t *testing.T) {
	s := NewSession("s1", "u1", models.ModeExam, []*models.SubjectSession{makeSubject("math", 2)}, 30)

	res, err := Advance(s, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeMoved {
		t.Fatalf("expected moved, got %s", res.Outcome)
	}
	if s.CurrentSubject().CurrentIndex != 1 {
		t.Errorf("expected pointer at 1, got %d", s.CurrentSubject().CurrentIndex)
	}
}

func TestSubjectAutoAdvanceAndSubmit(t *testing.T) {
	s := NewSession("s1", "u1", models.ModeExam, []*models.SubjectSession{
		makeSubject("math", 1),
		makeSubject("eng", 1),
	}, 30)

	res, _ := Advance(s, true)
	if res.Outcome != OutcomeSubjectChanged {
		t.Fatalf("expected subject_changed, got %s", res.Outcome)
	}
	if s.CurrentSubjectIndex != 1 || s.CurrentSubject().CurrentIndex != 0 {
		t.Errorf("expected pointer at start of second subject")
	}

	res, _ = Advance(s, true)
	if res.Outcome != OutcomeSubmit {
		t.Fatalf("expected submit from last question of last subject, got %s", res.Outcome)
	}
}

func TestEntitlementCapSpansSubjects(t *testing.T) {
	s := NewSession("s1", "u1", models.ModeExam, []*models.SubjectSession{
		makeSubject("math", 3),
		makeSubject("eng", 3),
	}, 30)

	// Four forward moves reach the second question of the second subject:
	// questions seen = 3 + 2 = 5.
	for i := 0; i < 4; i++ {
		res, err := Advance(s, false)
		if err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
		if res.Outcome == OutcomeBlocked {
			t.Fatalf("blocked too early on advance %d", i)
		}
	}
	if seen := s.QuestionsSeen(); seen != 5 {
		t.Fatalf("expected 5 questions seen, got %d", seen)
	}

	res, _ := Advance(s, false)
	if res.Outcome != OutcomeBlocked {
		t.Fatalf("expected blocked, got %s", res.Outcome)
	}
	if s.CurrentSubjectIndex != 1 || s.CurrentSubject().CurrentIndex != 1 {
		t.Errorf("pointer moved despite entitlement block")
	}

	// The same position advances fine with premium.
	res, _ = Advance(s, true)
	if res.Outcome != OutcomeMoved {
		t.Errorf("expected premium user to advance, got %s", res.Outcome)
	}
}

func TestBackStaysInsideSubject(t *testing.T) {
	s := NewSession("s1", "u1", models.ModeExam, []*models.SubjectSession{
		makeSubject("math", 2),
		makeSubject("eng", 2),
	}, 30)

	Advance(s, true)
	Advance(s, true) // now at eng, question 0

	if err := Back(s); err != nil {
		t.Fatalf("back failed: %v", err)
	}
	if s.CurrentSubjectIndex != 1 || s.CurrentSubject().CurrentIndex != 0 {
		t.Errorf("back crossed a subject boundary")
	}
}

func TestJumpToSubject(t *testing.T) {
	s := NewSession("s1", "u1", models.ModePractice, []*models.SubjectSession{
		makeSubject("math", 2),
		makeSubject("eng", 2),
	}, 0)

	if err := JumpToSubject(s, 1); err != nil {
		t.Fatalf("jump failed: %v", err)
	}
	if s.CurrentSubjectIndex != 1 {
		t.Errorf("expected subject index 1, got %d", s.CurrentSubjectIndex)
	}
	if err := JumpToSubject(s, 5); err != ErrBadSubject {
		t.Errorf("expected ErrBadSubject, got %v", err)
	}
}

func TestReAnsweringBeforeCheckAllowed(t *testing.T) {
	s := NewSession("s1", "u1", models.ModePractice, []*models.SubjectSession{makeSubject("math", 1)}, 0)

	if err := SelectOption(s, 0); err != nil {
		t.Fatalf("first select failed: %v", err)
	}
	if err := SelectOption(s, 1); err != nil {
		t.Fatalf("re-answer failed: %v", err)
	}
	if got := s.CurrentSubject().Answers[0]; got != 1 {
		t.Errorf("expected answer overwritten to 1, got %d", got)
	}
}

func TestTick(t *testing.T) {
	s := NewSession("s1", "u1", models.ModeExam, []*models.SubjectSession{makeSubject("math", 1)}, 30)
	s.RemainingSeconds = 2

	if expired := Tick(s); expired {
		t.Fatalf("expired one second early")
	}
	if s.CurrentSubject().ElapsedSeconds != 1 {
		t.Errorf("expected elapsed second charged to current subject")
	}
	if expired := Tick(s); !expired {
		t.Fatalf("expected expiry at zero")
	}
	// A stopped clock stays stopped.
	if expired := Tick(s); expired {
		t.Errorf("tick fired again after reaching zero")
	}
}

func TestTickIgnoresUntimedModes(t *testing.T) {
	s := NewSession("s1", "u1", models.ModePractice, []*models.SubjectSession{makeSubject("math", 1)}, 0)
	if Tick(s) {
		t.Errorf("practice session ticked")
	}
	if s.CurrentSubject().ElapsedSeconds != 0 {
		t.Errorf("practice session accrued time")
	}
}

func TestSubmitLifecycle(t *testing.T) {
	s := NewSession("s1", "u1", models.ModeExam, []*models.SubjectSession{makeSubject("math", 1)}, 30)

	if !BeginSubmit(s) {
		t.Fatalf("first BeginSubmit refused")
	}
	if BeginSubmit(s) {
		t.Fatalf("second BeginSubmit accepted while submitting")
	}

	// Navigation is rejected while the submission is outstanding.
	if _, err := Advance(s, true); err != ErrNotInProgress {
		t.Errorf("expected ErrNotInProgress during submit, got %v", err)
	}
	if err := SelectOption(s, 0); err != ErrNotInProgress {
		t.Errorf("expected ErrNotInProgress during submit, got %v", err)
	}

	// A failed submission reverts so the user can retry with answers intact.
	FailSubmit(s)
	if s.Status != models.StatusInProgress {
		t.Fatalf("expected revert to in_progress, got %s", s.Status)
	}

	if !BeginSubmit(s) {
		t.Fatalf("retry BeginSubmit refused")
	}
	FinishSubmit(s)
	if s.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
}

func TestFailedSubmitKeepsRevealedAnswerLocked(t *testing.T) {
	s := NewSession("s1", "u1", models.ModePractice, []*models.SubjectSession{makeSubject("math", 2)}, 0)

	if err := SelectOption(s, 0); err != nil {
		t.Fatalf("SelectOption failed: %v", err)
	}
	if _, err := Advance(s, true); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !s.Checked || !s.Revealed {
		t.Fatal("expected feedback revealed before submit")
	}

	if !BeginSubmit(s) {
		t.Fatalf("BeginSubmit refused")
	}
	FailSubmit(s)

	if !s.Checked || !s.Revealed {
		t.Error("revert must keep the revealed-feedback state")
	}
	if err := SelectOption(s, 1); err != ErrAnswerLocked {
		t.Errorf("expected ErrAnswerLocked after revert, got %v", err)
	}

	if !BeginSubmit(s) {
		t.Fatalf("retry BeginSubmit refused")
	}
	FinishSubmit(s)
	if s.Checked || s.Revealed {
		t.Error("completion should clear the check state")
	}
}
