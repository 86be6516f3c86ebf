package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsd7888/EduNexusAI-sub000/internal/service"
)

// handleGenerateQuiz 生成测验
func (s *HTTPGinServer) handleGenerateQuiz(c *gin.Context) {
	var req service.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	quizSet, questions, err := s.quizSvc.GenerateQuiz(c.Request.Context(), &req)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"quiz_set":  quizSet,
		"questions": questions,
	})
}

// handleGetQuiz 读取测验详情
func (s *HTTPGinServer) handleGetQuiz(c *gin.Context) {
	id := c.Param("id")

	quizSet, questions, err := s.quizSvc.GetQuizSet(id)
	if err != nil {
		s.error(c, http.StatusNotFound, err.Error())
		return
	}

	s.success(c, gin.H{
		"quiz_set":  quizSet,
		"questions": questions,
	})
}

// GradeRequest 判分请求
type GradeRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// handleGradeQuiz 对一次提交判分
func (s *HTTPGinServer) handleGradeQuiz(c *gin.Context) {
	id := c.Param("id")

	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := s.quizSvc.GradeSubmission(id, req.Answers)
	if err != nil {
		s.error(c, http.StatusNotFound, err.Error())
		return
	}

	s.success(c, result)
}
