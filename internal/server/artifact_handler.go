package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dsd7888/EduNexusAI-sub000/internal/generator"
)

// GenerateArtifactRequest 制品生成请求
type GenerateArtifactRequest struct {
	Scope          string `json:"scope" binding:"required"`
	Kind           string `json:"kind" binding:"required"` // deck | paper
	Topic          string `json:"topic" binding:"required"`
	Tier           string `json:"tier"`
	SourceMaterial string `json:"source_material"`
	WholeModule    bool   `json:"whole_module"`
}

// handleGenerateArtifact 生成制品（同步长请求）
func (s *HTTPGinServer) handleGenerateArtifact(c *gin.Context) {
	var req GenerateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	genReq := &generator.Request{
		Scope:          req.Scope,
		Kind:           req.Kind,
		Topic:          req.Topic,
		Tier:           req.Tier,
		SourceMaterial: req.SourceMaterial,
		WholeModule:    req.WholeModule,
	}

	// 调用方没给资料时，从资料库检索相关内容注入提示词
	if genReq.SourceMaterial == "" {
		if docs, err := s.materials.Retrieve(c.Request.Context(), req.Scope, req.Topic); err == nil {
			var sb strings.Builder
			for _, doc := range docs {
				sb.WriteString(doc.Title + "\n" + doc.Content + "\n\n")
			}
			genReq.SourceMaterial = sb.String()
		}
	}

	result, err := s.generator.Generate(c.Request.Context(), genReq)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	artifact, err := s.artifactSvc.SaveResult(genReq, result)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"artifact":        artifact,
		"units":           result.Units,
		"planned_count":   result.PlannedCount,
		"filled_count":    result.FilledCount,
		"skipped_batches": result.SkippedBatches,
		"degraded":        result.Degraded(),
	})
}

// handleGetArtifact 读取制品详情
func (s *HTTPGinServer) handleGetArtifact(c *gin.Context) {
	id := c.Param("id")

	artifact, units, err := s.artifactSvc.GetArtifact(id)
	if err != nil {
		s.error(c, http.StatusNotFound, err.Error())
		return
	}

	s.success(c, gin.H{
		"artifact": artifact,
		"units":    units,
	})
}

// handleListArtifacts 列出制品
func (s *HTTPGinServer) handleListArtifacts(c *gin.Context) {
	scope := c.Query("scope")

	artifacts, err := s.artifactSvc.ListArtifacts(scope)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"total":     len(artifacts),
		"artifacts": artifacts,
	})
}
