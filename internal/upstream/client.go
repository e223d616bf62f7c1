// Package upstream talks to the question API that serves subjects,
// question banks and hosted quiz sessions.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"exam-engine/internal/models"
)

// Source is the slice of the question API the engine depends on.
type Source interface {
	StartQuiz(ctx context.Context, req StartQuizRequest) (*Quiz, error)
	SubmitQuiz(ctx context.Context, quizID string, answers map[string]string, timeSpent map[string]int) error
	ListQuestions(ctx context.Context, subjectID string, year, limit int) ([]models.RawQuestion, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
}

type StartQuizRequest struct {
	Mode              string       `json:"mode"`
	Subjects          []SubjectRef `json:"subjects"`
	DurationInMinutes int          `json:"durationInMinutes,omitempty"`
}

type SubjectRef struct {
	SubjectID     string `json:"subjectId"`
	Year          int    `json:"year,omitempty"`
	QuestionCount int    `json:"questionCount,omitempty"`
}

// SubjectGroup is a per-subject bundle of raw questions inside a hosted quiz.
type SubjectGroup struct {
	SubjectID string               `json:"subjectId"`
	Name      string               `json:"name"`
	Questions []models.RawQuestion `json:"questions"`
}

type Quiz struct {
	ID               string         `json:"id"`
	LegacyID         string         `json:"_id"`
	GroupedQuestions []SubjectGroup `json:"groupedQuestions"`
}

// QuizID returns whichever identifier field the API populated.
func (q *Quiz) QuizID() string {
	if q.ID != "" {
		return q.ID
	}
	return q.LegacyID
}

// APIError reports a non-2xx response from the question API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("question API returned %d: %s", e.Status, e.Message)
}

// Client is an HTTP implementation of Source.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return data, nil
}

// StartQuiz asks the API to assemble a hosted quiz. Some deployments wrap
// the quiz in a {"quiz": ...} envelope, others return it bare, so both
// shapes are accepted.
func (c *Client) StartQuiz(ctx context.Context, req StartQuizRequest) (*Quiz, error) {
	data, err := c.do(ctx, http.MethodPost, "/quiz/start", req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Quiz *Quiz `json:"quiz"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Quiz != nil {
		return envelope.Quiz, nil
	}

	var quiz Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("decoding quiz: %w", err)
	}
	return &quiz, nil
}

func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers map[string]string, timeSpent map[string]int) error {
	payload := map[string]any{
		"answers":             answers,
		"timeSpentPerSubject": timeSpent,
	}
	_, err := c.do(ctx, http.MethodPost, "/quiz/"+quizID+"/submit", payload)
	return err
}

func (c *Client) ListQuestions(ctx context.Context, subjectID string, year, limit int) ([]models.RawQuestion, error) {
	path := fmt.Sprintf("/questions?subjectId=%s&year=%d&limit=%d", subjectID, year, limit)
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []models.RawQuestion `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var questions []models.RawQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	return questions, nil
}

func (c *Client) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	data, err := c.do(ctx, http.MethodGet, "/subjects", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []models.Subject `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var subjects []models.Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("decoding subjects: %w", err)
	}
	return subjects, nil
}
