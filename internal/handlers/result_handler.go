package handlers

import (
	"net/http"

	"exam-engine/internal/service"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	Service *service.QuizService
}

func NewResultHandler(s *service.QuizService) *ResultHandler {
	return &ResultHandler{Service: s}
}

// GetResult returns the scored outcome of a completed session.
func (h *ResultHandler) GetResult(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	result, err := h.Service.Result(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCorrections returns the ordered review records of a completed session.
func (h *ResultHandler) GetCorrections(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	corrections, err := h.Service.Corrections(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrections": corrections})
}

// GetUserResults lists a user's archived results.
func (h *ResultHandler) GetUserResults(c *gin.Context) {
	results, err := h.Service.UserResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
