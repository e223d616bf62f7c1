package handlers

import (
	"net/http"

	"exam-engine/internal/service"

	"github.com/gin-gonic/gin"
)

type SubjectHandler struct {
	Service *service.SubjectService
}

func NewSubjectHandler(s *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{Service: s}
}

// ListSubjects returns the subject catalog for the subject picker.
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.Service.ListSubjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Subject list unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}
