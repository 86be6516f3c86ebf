package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AskRequest 答疑请求
type AskRequest struct {
	Scope    string `json:"scope" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// handleAsk 答疑接口
func (s *HTTPGinServer) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := s.tutorSvc.Answer(c.Request.Context(), req.Scope, req.Question)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"answer": result.Text,
		"cached": result.Cached,
	})
}
