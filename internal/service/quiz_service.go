package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"exam-engine/internal/cache"
	"exam-engine/internal/engine"
	"exam-engine/internal/event"
	"exam-engine/internal/models"
	"exam-engine/internal/normalize"
	"exam-engine/internal/repository"
	"exam-engine/internal/upstream"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidMode      = errors.New("invalid quiz mode")
	ErrNoSubjects       = errors.New("at least one subject is required")
	ErrNoQuestions      = errors.New("no questions available for the requested subjects")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrNotCompleted     = errors.New("session is not completed")
)

const (
	defaultExamMinutes  = 60
	offlineLimitExam    = 40
	offlineLimitDefault = 10
)

type CreateSessionRequest struct {
	Mode            models.Mode               `json:"mode"`
	Subjects        []models.SubjectSelection `json:"subjects"`
	DurationMinutes int                       `json:"durationMinutes"`
}

// AdvanceView is what one press of the next control produced. Result is set
// only when the press triggered submission.
type AdvanceView struct {
	Outcome engine.AdvanceOutcome `json:"outcome"`
	Session *models.QuizSession   `json:"session"`
	Result  *models.QuizResult    `json:"result,omitempty"`
}

// liveSession pairs a running session with its lock and exam clock. remoteID
// is the upstream quiz id used at submission; it is empty for offline
// sessions.
type liveSession struct {
	mu       sync.Mutex
	session  *models.QuizSession
	remoteID string

	stop     chan struct{}
	stopOnce sync.Once

	result      *models.QuizResult
	corrections []models.Correction
}

func (ls *liveSession) stopClock() {
	if ls.stop != nil {
		ls.stopOnce.Do(func() { close(ls.stop) })
	}
}

// QuizService orchestrates sessions around the pure engine: it fetches and
// normalizes questions, runs the exam clock, submits upstream, archives
// results and fans out events. Sessions live in memory for their lifetime.
type QuizService struct {
	Source         upstream.Source
	Store          cache.Store
	Normalizer     *normalize.Normalizer
	Publisher      event.Publisher
	ResultRepo     *repository.ResultRepository
	CorrectionRepo *repository.CorrectionRepository

	// tickInterval is how often the exam clock loses one second of
	// RemainingSeconds. Tests shrink it; everything else runs at a second.
	tickInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*liveSession
}

func NewQuizService(
	source upstream.Source,
	store cache.Store,
	normalizer *normalize.Normalizer,
	publisher event.Publisher,
	resultRepo *repository.ResultRepository,
	correctionRepo *repository.CorrectionRepository,
) *QuizService {
	return &QuizService{
		Source:         source,
		Store:          store,
		Normalizer:     normalizer,
		Publisher:      publisher,
		ResultRepo:     resultRepo,
		CorrectionRepo: correctionRepo,
		tickInterval:   time.Second,
		sessions:       make(map[string]*liveSession),
	}
}

// CreateSession starts a quiz. It asks the question API for a hosted quiz
// first; when that call fails the session is assembled from the local cache
// instead and flagged offline. A hosted quiz that comes back empty is a
// terminal failure, not a fallback trigger.
func (s *QuizService) CreateSession(ctx context.Context, userID string, req CreateSessionRequest) (*models.QuizSession, error) {
	if !req.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	if len(req.Subjects) == 0 {
		return nil, ErrNoSubjects
	}
	duration := req.DurationMinutes
	if req.Mode == models.ModeExam && duration <= 0 {
		duration = defaultExamMinutes
	}

	quiz, err := s.Source.StartQuiz(ctx, startRequest(req, duration))
	if err != nil {
		log.Printf("[SESSION] live start failed: %v, trying cached questions", err)
		return s.createOffline(ctx, userID, req, duration)
	}

	subjects := s.subjectsFromQuiz(quiz, req.Subjects)
	if countQuestions(subjects) == 0 {
		return nil, ErrNoQuestions
	}

	sess := engine.NewSession(quiz.QuizID(), userID, req.Mode, subjects, duration)
	s.register(sess, quiz.QuizID())
	s.publish(event.SessionCreated, map[string]interface{}{
		"sessionId": sess.ID,
		"userId":    userID,
		"mode":      req.Mode,
		"subjects":  len(subjects),
	})
	return s.Snapshot(userID, sess.ID)
}

func startRequest(req CreateSessionRequest, duration int) upstream.StartQuizRequest {
	out := upstream.StartQuizRequest{Mode: string(req.Mode)}
	if req.Mode == models.ModeExam {
		out.DurationInMinutes = duration
	}
	for _, sel := range req.Subjects {
		out.Subjects = append(out.Subjects, upstream.SubjectRef{
			SubjectID:     sel.SubjectID,
			Year:          sel.Year,
			QuestionCount: sel.QuestionCount,
		})
	}
	return out
}

// subjectsFromQuiz builds subject sessions from the hosted quiz's grouped
// questions, pulling year and display name from the matching selection.
func (s *QuizService) subjectsFromQuiz(quiz *upstream.Quiz, selections []models.SubjectSelection) []*models.SubjectSession {
	bySubject := make(map[string]models.SubjectSelection, len(selections))
	for _, sel := range selections {
		bySubject[sel.SubjectID] = sel
	}

	var subjects []*models.SubjectSession
	for _, group := range quiz.GroupedQuestions {
		if len(group.Questions) == 0 {
			continue
		}
		sel := bySubject[group.SubjectID]
		name := group.Name
		if name == "" {
			name = sel.Name
		}
		subjects = append(subjects, &models.SubjectSession{
			SubjectID: group.SubjectID,
			Name:      name,
			Year:      sel.Year,
			Questions: s.Normalizer.Questions(group.Questions),
			Answers:   make(map[int]int),
		})
	}
	return subjects
}

// createOffline assembles a session from cached question batches. Subjects
// with no cached batch for their year are dropped; the session fails only
// when nothing at all is cached. Exam mode takes up to 40 questions per
// subject, other modes 10.
func (s *QuizService) createOffline(ctx context.Context, userID string, req CreateSessionRequest, duration int) (*models.QuizSession, error) {
	limit := offlineLimitDefault
	if req.Mode == models.ModeExam {
		limit = offlineLimitExam
	}

	var subjects []*models.SubjectSession
	for _, sel := range req.Subjects {
		raws := s.Store.Get(ctx, sel.SubjectID, sel.Year)
		if len(raws) == 0 {
			log.Printf("[SESSION] no cached questions for %s/%d, skipping subject", sel.SubjectID, sel.Year)
			continue
		}
		if len(raws) > limit {
			raws = raws[:limit]
		}
		subjects = append(subjects, &models.SubjectSession{
			SubjectID: sel.SubjectID,
			Name:      sel.Name,
			Year:      sel.Year,
			Questions: s.Normalizer.Questions(raws),
			Answers:   make(map[int]int),
		})
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: nothing cached for the requested subjects", ErrNoQuestions)
	}

	id := "offline_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	sess := engine.NewSession(id, userID, req.Mode, subjects, duration)
	sess.Offline = true
	s.register(sess, "")
	s.publish(event.SessionOffline, map[string]interface{}{
		"sessionId": sess.ID,
		"userId":    userID,
		"mode":      req.Mode,
	})
	return s.Snapshot(userID, sess.ID)
}

func (s *QuizService) register(sess *models.QuizSession, remoteID string) {
	ls := &liveSession{session: sess, remoteID: remoteID}
	if sess.Mode == models.ModeExam {
		ls.stop = make(chan struct{})
		go s.runClock(ls)
	}
	s.mu.Lock()
	s.sessions[sess.ID] = ls
	s.mu.Unlock()
}

func (s *QuizService) lookup(userID, sessionID string) (*liveSession, error) {
	s.mu.Lock()
	ls, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok || ls.session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// Snapshot returns a copy of the session safe to hand to the encoder while
// the clock keeps ticking.
func (s *QuizService) Snapshot(userID, sessionID string) (*models.QuizSession, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return cloneSession(ls.session), nil
}

func cloneSession(sess *models.QuizSession) *models.QuizSession {
	out := *sess
	out.Subjects = make([]*models.SubjectSession, len(sess.Subjects))
	for i, sub := range sess.Subjects {
		cp := *sub
		cp.Answers = make(map[int]int, len(sub.Answers))
		for k, v := range sub.Answers {
			cp.Answers[k] = v
		}
		out.Subjects[i] = &cp
	}
	return &out
}

func (s *QuizService) Answer(userID, sessionID string, optionIndex int) (*models.QuizSession, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := engine.SelectOption(ls.session, optionIndex); err != nil {
		return nil, err
	}
	return cloneSession(ls.session), nil
}

// Advance runs one press of the next control and performs whatever the
// outcome demands: publishing a subject-change or entitlement event, or
// submitting when the session reached its end.
func (s *QuizService) Advance(ctx context.Context, userID, sessionID string, premium bool) (*AdvanceView, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	res, err := engine.Advance(ls.session, premium)
	if err != nil {
		ls.mu.Unlock()
		return nil, err
	}
	view := &AdvanceView{Outcome: res.Outcome, Session: cloneSession(ls.session)}
	ls.mu.Unlock()

	switch res.Outcome {
	case engine.OutcomeSubjectChanged:
		s.publish(event.SubjectChanged, map[string]interface{}{
			"sessionId": sessionID,
			"subjectId": res.Subject.SubjectID,
		})
	case engine.OutcomeBlocked:
		s.publish(event.EntitlementBlocked, map[string]interface{}{
			"sessionId": sessionID,
			"userId":    userID,
			"seen":      view.Session.QuestionsSeen(),
		})
	case engine.OutcomeSubmit:
		result, err := s.submit(ctx, ls)
		if err != nil {
			return nil, err
		}
		view.Result = result
		ls.mu.Lock()
		view.Session = cloneSession(ls.session)
		ls.mu.Unlock()
	}
	return view, nil
}

func (s *QuizService) Back(userID, sessionID string) (*models.QuizSession, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := engine.Back(ls.session); err != nil {
		return nil, err
	}
	return cloneSession(ls.session), nil
}

func (s *QuizService) JumpToSubject(userID, sessionID string, index int) (*models.QuizSession, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := engine.JumpToSubject(ls.session, index); err != nil {
		return nil, err
	}
	return cloneSession(ls.session), nil
}

func (s *QuizService) ToggleReveal(userID, sessionID string) (*models.QuizSession, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := engine.ToggleReveal(ls.session); err != nil {
		return nil, err
	}
	return cloneSession(ls.session), nil
}

// Submit closes the session. Submitting a completed session returns the
// stored result again; a failed upstream call reverts the session to
// in-progress so the user can retry without losing answers.
func (s *QuizService) Submit(ctx context.Context, userID, sessionID string) (*models.QuizResult, error) {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, ls)
}

func (s *QuizService) submit(ctx context.Context, ls *liveSession) (*models.QuizResult, error) {
	ls.mu.Lock()
	if ls.session.Status == models.StatusCompleted {
		result := ls.result
		ls.mu.Unlock()
		return result, nil
	}
	if !engine.BeginSubmit(ls.session) {
		ls.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	answers, timeSpent := engine.SubmissionPayload(ls.session)
	offline := ls.session.Offline
	remoteID := ls.remoteID
	sessionID := ls.session.ID
	userID := ls.session.UserID
	ls.mu.Unlock()

	// Offline sessions have no hosted quiz to report to, so they complete
	// locally.
	if !offline {
		if err := s.Source.SubmitQuiz(ctx, remoteID, answers, timeSpent); err != nil {
			ls.mu.Lock()
			engine.FailSubmit(ls.session)
			ls.mu.Unlock()
			s.publish(event.SubmitFailed, map[string]interface{}{
				"sessionId": sessionID,
				"userId":    userID,
			})
			return nil, fmt.Errorf("submitting quiz %s: %w", sessionID, err)
		}
	}

	ls.mu.Lock()
	result := engine.Score(ls.session)
	corrections := engine.Corrections(ls.session)
	engine.FinishSubmit(ls.session)
	ls.result = result
	ls.corrections = corrections
	ls.mu.Unlock()
	ls.stopClock()

	s.archive(ctx, result, corrections)
	s.publish(event.SessionSubmitted, map[string]interface{}{
		"sessionId": sessionID,
		"userId":    userID,
		"score":     result.TotalScore,
		"maxScore":  result.MaxScore,
		"offline":   offline,
	})
	return result, nil
}

func (s *QuizService) archive(ctx context.Context, result *models.QuizResult, corrections []models.Correction) {
	if s.ResultRepo != nil {
		if err := s.ResultRepo.Create(ctx, result); err != nil {
			log.Printf("[SESSION] archiving result for %s failed: %v", result.SessionID, err)
		}
	}
	if s.CorrectionRepo != nil {
		if err := s.CorrectionRepo.CreateMany(ctx, corrections); err != nil {
			log.Printf("[SESSION] archiving corrections for %s failed: %v", result.SessionID, err)
		}
	}
}

// Result returns the scored outcome of a completed session, falling back to
// the archive when the session is no longer held in memory.
func (s *QuizService) Result(ctx context.Context, userID, sessionID string) (*models.QuizResult, error) {
	ls, err := s.lookup(userID, sessionID)
	if err == nil {
		ls.mu.Lock()
		result := ls.result
		ls.mu.Unlock()
		if result == nil {
			return nil, ErrNotCompleted
		}
		return result, nil
	}
	if s.ResultRepo == nil {
		return nil, ErrSessionNotFound
	}
	result, rerr := s.ResultRepo.FindBySession(ctx, sessionID)
	if rerr != nil || result.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return result, nil
}

// Corrections returns the ordered review records of a completed session.
func (s *QuizService) Corrections(ctx context.Context, userID, sessionID string) ([]models.Correction, error) {
	ls, err := s.lookup(userID, sessionID)
	if err == nil {
		ls.mu.Lock()
		corrections := ls.corrections
		done := ls.session.Status == models.StatusCompleted
		ls.mu.Unlock()
		if !done {
			return nil, ErrNotCompleted
		}
		return corrections, nil
	}
	if s.CorrectionRepo == nil {
		return nil, ErrSessionNotFound
	}
	corrections, rerr := s.CorrectionRepo.FindBySession(ctx, sessionID)
	if rerr != nil || len(corrections) == 0 {
		return nil, ErrSessionNotFound
	}
	return corrections, nil
}

// UserResults lists a user's archived results, newest first.
func (s *QuizService) UserResults(ctx context.Context, userID string) ([]models.QuizResult, error) {
	if s.ResultRepo == nil {
		return nil, nil
	}
	return s.ResultRepo.FindByUser(ctx, userID)
}

// Abandon discards a session and stops its clock. Abandoning is final: the
// session is dropped without scoring.
func (s *QuizService) Abandon(userID, sessionID string) error {
	ls, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	ls.stopClock()
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// runClock drives the exam countdown at one tick per second and forces
// submission when time runs out.
func (s *QuizService) runClock(ls *liveSession) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ls.stop:
			return
		case <-ticker.C:
			ls.mu.Lock()
			expired := engine.Tick(ls.session)
			ls.mu.Unlock()
			if expired {
				s.publish(event.SessionExpired, map[string]interface{}{
					"sessionId": ls.session.ID,
					"userId":    ls.session.UserID,
				})
				if _, err := s.submit(context.Background(), ls); err != nil {
					log.Printf("[SESSION] auto submit of %s failed: %v", ls.session.ID, err)
				}
				return
			}
		}
	}
}

func (s *QuizService) publish(eventType string, payload interface{}) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(eventType, payload); err != nil {
		log.Printf("[SESSION] publishing %s failed: %v", eventType, err)
	}
}

func countQuestions(subjects []*models.SubjectSession) int {
	n := 0
	for _, sub := range subjects {
		n += len(sub.Questions)
	}
	return n
}
