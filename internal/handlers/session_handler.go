package handlers

import (
	"errors"
	"net/http"

	"exam-engine/internal/engine"
	"exam-engine/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.QuizService
}

func NewSessionHandler(s *service.QuizService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// userID reads the identity header set by the auth middleware upstream.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return "", false
	}
	return id, true
}

// premium reads the entitlement header on every request so an upgrade takes
// effect mid-session.
func premium(c *gin.Context) bool {
	return c.GetHeader("X-Premium") == "true"
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrInvalidMode), errors.Is(err, service.ErrNoSubjects),
		errors.Is(err, engine.ErrBadOption), errors.Is(err, engine.ErrBadSubject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrAnswerLocked), errors.Is(err, engine.ErrNotInProgress),
		errors.Is(err, service.ErrSubmitInProgress), errors.Is(err, service.ErrNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoQuestions):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "No questions available. Sync questions while online, then try again.",
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Quiz operation failed",
			"details": err.Error(),
		})
	}
}

// CreateSession starts a new quiz session, live when the question API is
// reachable and from the cache otherwise.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	session, err := h.Service.CreateSession(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession returns a state snapshot of a running session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	session, err := h.Service.Snapshot(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Answer records an option selection for the current question.
func (h *SessionHandler) Answer(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req struct {
		OptionIndex *int `json:"optionIndex" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	session, err := h.Service.Answer(uid, c.Param("id"), *req.OptionIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Advance runs one press of the next control.
func (h *SessionHandler) Advance(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.Service.Advance(c.Request.Context(), uid, c.Param("id"), premium(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Back moves to the previous question within the current subject.
func (h *SessionHandler) Back(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	session, err := h.Service.Back(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// JumpToSubject switches to another subject tab.
func (h *SessionHandler) JumpToSubject(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	session, err := h.Service.JumpToSubject(uid, c.Param("id"), *req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ToggleReveal flips the study-mode show-answer state.
func (h *SessionHandler) ToggleReveal(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	session, err := h.Service.ToggleReveal(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Submit closes the session and returns the scored result.
func (h *SessionHandler) Submit(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	result, err := h.Service.Submit(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Abandon discards a session without scoring it.
func (h *SessionHandler) Abandon(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.Service.Abandon(uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}
