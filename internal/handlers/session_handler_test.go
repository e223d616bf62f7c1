package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exam-engine/internal/cache"
	"exam-engine/internal/models"
	"exam-engine/internal/normalize"
	"exam-engine/internal/service"
	"exam-engine/internal/upstream"

	"github.com/gin-gonic/gin"
)

type markerKey struct{}

// recordingSource remembers what each upstream call saw on its context and
// refuses to commit a submission whose context is already done, the way a
// real HTTP client aborts the request.
type recordingSource struct {
	quiz        *upstream.Quiz
	startMarker any
	committed   int
}

func (s *recordingSource) StartQuiz(ctx context.Context, _ upstream.StartQuizRequest) (*upstream.Quiz, error) {
	s.startMarker = ctx.Value(markerKey{})
	return s.quiz, nil
}

func (s *recordingSource) SubmitQuiz(ctx context.Context, _ string, _ map[string]string, _ map[string]int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.committed++
	return nil
}

func (s *recordingSource) ListQuestions(context.Context, string, int, int) ([]models.RawQuestion, error) {
	return nil, errors.New("not used")
}

func (s *recordingSource) ListSubjects(context.Context) ([]models.Subject, error) {
	return nil, errors.New("not used")
}

func testQuiz() *upstream.Quiz {
	return &upstream.Quiz{
		ID: "quiz-1",
		GroupedQuestions: []upstream.SubjectGroup{
			{
				SubjectID: "math",
				Name:      "Mathematics",
				Questions: []models.RawQuestion{
					{
						ID:            "q1",
						Question:      "sample",
						Options:       json.RawMessage(`["first","second"]`),
						CorrectOption: "a",
					},
				},
			},
		},
	}
}

func newTestRouter(source upstream.Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewQuizService(source, cache.NewMemoryStore(), normalize.New("https://static.example.com"), nil, nil, nil)
	handler := NewSessionHandler(svc)

	r := gin.New()
	r.POST("/session", handler.CreateSession)
	r.POST("/session/:id/submit", handler.Submit)
	return r
}

const createBody = `{"mode":"practice","subjects":[{"subjectId":"math","name":"Mathematics","year":2023}]}`

func createSession(t *testing.T, r *gin.Engine) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(createBody))
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateSessionUsesRequestContext(t *testing.T) {
	source := &recordingSource{quiz: testQuiz()}
	r := newTestRouter(source)

	ctx := context.WithValue(context.Background(), markerKey{}, "marker")
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(createBody)).WithContext(ctx)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	if source.startMarker != "marker" {
		t.Error("live fetch did not run on the request context")
	}
}

func TestAbortedSubmitDoesNotCommit(t *testing.T) {
	source := &recordingSource{quiz: testQuiz()}
	r := newTestRouter(source)
	createSession(t, r)

	// A client that disconnects mid-submit must not commit the upstream
	// submission; the session reverts so a later retry still works.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/session/quiz-1/submit", nil).WithContext(ctx)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("aborted submit returned %d, want %d", w.Code, http.StatusBadGateway)
	}
	if source.committed != 0 {
		t.Fatalf("aborted submit committed %d times, want 0", source.committed)
	}

	req = httptest.NewRequest(http.MethodPost, "/session/quiz-1/submit", nil)
	req.Header.Set("X-User-ID", "user-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("retry returned %d: %s", w.Code, w.Body.String())
	}
	if source.committed != 1 {
		t.Errorf("retry committed %d times, want 1", source.committed)
	}
}
