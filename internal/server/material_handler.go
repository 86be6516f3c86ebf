package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dsd7888/EduNexusAI-sub000/internal/material"
)

// handleAddMaterial 添加学习资料
func (s *HTTPGinServer) handleAddMaterial(c *gin.Context) {
	var req material.AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	id, err := s.materials.AddMaterial(c.Request.Context(), &req)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"id": id,
	})
}

// handleListMaterials 列出学习资料
func (s *HTTPGinServer) handleListMaterials(c *gin.Context) {
	scope := c.Query("scope")

	docs, err := s.materials.ListMaterials(scope)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"total":     len(docs),
		"materials": docs,
	})
}

// handleDeleteMaterial 删除学习资料
func (s *HTTPGinServer) handleDeleteMaterial(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid material id")
		return
	}

	if err := s.materials.DeleteMaterial(uint(id)); err != nil {
		s.error(c, http.StatusNotFound, err.Error())
		return
	}

	s.success(c, gin.H{
		"id": id,
	})
}
