package models

// Mode selects how a session behaves: exam is timed and single-pass,
// practice and study are untimed with a check step before moving on.
type Mode string

const (
	ModeExam     Mode = "exam"
	ModePractice Mode = "practice"
	ModeStudy    Mode = "study"
)

// Untimed reports whether the mode runs without a clock and uses the
// two-step check/next control flow.
func (m Mode) Untimed() bool {
	return m == ModePractice || m == ModeStudy
}

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	return m == ModeExam || m == ModePractice || m == ModeStudy
}

// Status is the session lifecycle state.
type Status string

const (
	StatusLoading    Status = "loading"
	StatusInProgress Status = "in_progress"
	StatusSubmitting Status = "submitting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// SubjectSelection is the caller-supplied configuration for one subject:
// which subject, which past-question year, and how many questions to pull.
// It is immutable for the session's lifetime.
type SubjectSelection struct {
	SubjectID     string `json:"subjectId" binding:"required"`
	Name          string `json:"name"`
	Year          int    `json:"year"`
	QuestionCount int    `json:"questionCount"`
}

// SubjectSession holds one subject's questions and the user's progress
// through them. Answers maps question index to selected option index.
type SubjectSession struct {
	SubjectID      string      `json:"subjectId"`
	Name           string      `json:"name"`
	Year           int         `json:"year"`
	Questions      []Question  `json:"questions"`
	CurrentIndex   int         `json:"currentIndex"`
	Answers        map[int]int `json:"answers"`
	ElapsedSeconds int         `json:"elapsedSeconds"`
}

// QuizSession is the full state of one running quiz: the ordered subjects,
// the navigation pointers, the exam clock, and the lifecycle status. It is
// session-scoped in-memory state owned by the session manager; nothing here
// is persisted.
type QuizSession struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"userId"`
	Mode                 Mode              `json:"mode"`
	Subjects             []*SubjectSession `json:"subjects"`
	CurrentSubjectIndex  int               `json:"currentSubjectIndex"`
	TotalDurationSeconds int               `json:"totalDurationSeconds"`
	RemainingSeconds     int               `json:"remainingSeconds"`
	Status               Status            `json:"status"`
	Checked              bool              `json:"checked"`
	Revealed             bool              `json:"revealed"`
	Offline              bool              `json:"offline"`
}

// CurrentSubject returns the subject the pointer sits on, or nil when the
// session holds no subjects.
func (s *QuizSession) CurrentSubject() *SubjectSession {
	if s.CurrentSubjectIndex < 0 || s.CurrentSubjectIndex >= len(s.Subjects) {
		return nil
	}
	return s.Subjects[s.CurrentSubjectIndex]
}

// CurrentQuestion returns the question the pointer sits on, or nil.
func (s *QuizSession) CurrentQuestion() *Question {
	sub := s.CurrentSubject()
	if sub == nil || sub.CurrentIndex < 0 || sub.CurrentIndex >= len(sub.Questions) {
		return nil
	}
	return &sub.Questions[sub.CurrentIndex]
}

// QuestionsSeen is the cumulative number of questions the user has reached
// across all subjects: every question of subjects already passed plus the
// position within the current one. The free-tier gate runs on this number,
// so the cap spans subject boundaries.
func (s *QuizSession) QuestionsSeen() int {
	n := 0
	for i := 0; i < s.CurrentSubjectIndex && i < len(s.Subjects); i++ {
		n += len(s.Subjects[i].Questions)
	}
	if sub := s.CurrentSubject(); sub != nil {
		n += sub.CurrentIndex + 1
	}
	return n
}
