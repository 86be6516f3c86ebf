package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleCacheStats 缓存统计
func (s *HTTPGinServer) handleCacheStats(c *gin.Context) {
	stats, err := s.cache.GetStats()
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, stats)
}

// handleCacheClear 清理缓存（scope 为空时清理全部）
func (s *HTTPGinServer) handleCacheClear(c *gin.Context) {
	scope := c.Query("scope")

	deleted, err := s.cache.Clear(scope)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, gin.H{
		"deleted": deleted,
		"scope":   scope,
	})
}
