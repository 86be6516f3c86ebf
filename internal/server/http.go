package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"

	"github.com/dsd7888/EduNexusAI-sub000/internal/config"
	"github.com/dsd7888/EduNexusAI-sub000/internal/generator"
	"github.com/dsd7888/EduNexusAI-sub000/internal/material"
	"github.com/dsd7888/EduNexusAI-sub000/internal/memory"
	"github.com/dsd7888/EduNexusAI-sub000/internal/service"
	"github.com/dsd7888/EduNexusAI-sub000/internal/tutor"
)

// HTTPGinServer 基于 Gin 的 HTTP 服务器
type HTTPGinServer struct {
	config      *config.Config
	engine      *gin.Engine
	server      *http.Server
	tutorSvc    *tutor.Service
	cache       *memory.Cache
	generator   *generator.StagedGenerator
	artifactSvc *service.ArtifactService
	quizSvc     *service.QuizService
	materials   *material.Retriever
}

// Deps 服务器依赖的业务组件
type Deps struct {
	TutorSvc    *tutor.Service
	Cache       *memory.Cache
	Generator   *generator.StagedGenerator
	ArtifactSvc *service.ArtifactService
	QuizSvc     *service.QuizService
	Materials   *material.Retriever
}

// NewHTTPGinServer 创建基于 Gin 的 HTTP 服务器
func NewHTTPGinServer(cfg *config.Config, deps *Deps) *HTTPGinServer {
	// 设置 Gin 模式
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	s := &HTTPGinServer{
		config:      cfg,
		engine:      engine,
		tutorSvc:    deps.TutorSvc,
		cache:       deps.Cache,
		generator:   deps.Generator,
		artifactSvc: deps.ArtifactSvc,
		quizSvc:     deps.QuizSvc,
		materials:   deps.Materials,
	}

	// 注册中间件
	s.registerMiddlewares()

	// 注册路由
	s.registerRoutes()

	return s
}

// registerMiddlewares 注册中间件
func (s *HTTPGinServer) registerMiddlewares() {
	// 恢复中间件 - 从 panic 恢复
	s.engine.Use(gin.Recovery())

	// 自定义日志中间件
	s.engine.Use(s.loggingMiddleware())

	// CORS 中间件(如果需要)
	s.engine.Use(s.corsMiddleware())
}

// loggingMiddleware 自定义日志中间件
func (s *HTTPGinServer) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		logx.Info("HTTP request, method %s, path %s, remote_addr %s", method, path, c.ClientIP())

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		logx.Info("HTTP response, method %s, path %s, status %d, duration %s",
			method, path, status, duration)
	}
}

// corsMiddleware CORS 中间件
func (s *HTTPGinServer) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// registerRoutes 注册路由
func (s *HTTPGinServer) registerRoutes() {
	// API v1 路由组
	v1 := s.engine.Group("/api/v1")
	{
		// 健康检查
		v1.GET("/health", s.handleHealth)

		// 答疑
		v1.POST("/ask", s.handleAsk)

		// 制品生成
		artifacts := v1.Group("/artifacts")
		{
			artifacts.POST("", s.handleGenerateArtifact)
			artifacts.GET("", s.handleListArtifacts)
			artifacts.GET("/:id", s.handleGetArtifact)
		}

		// 测验
		quiz := v1.Group("/quiz")
		{
			quiz.POST("", s.handleGenerateQuiz)
			quiz.GET("/:id", s.handleGetQuiz)
			quiz.POST("/:id/grade", s.handleGradeQuiz)
		}

		// 语义缓存管理
		cache := v1.Group("/cache")
		{
			cache.GET("/stats", s.handleCacheStats)
			cache.DELETE("", s.handleCacheClear)
		}

		// 学习资料
		materials := v1.Group("/materials")
		{
			materials.POST("", s.handleAddMaterial)
			materials.GET("", s.handleListMaterials)
			materials.DELETE("/:id", s.handleDeleteMaterial)
		}
	}
}

// Start 启动 HTTP 服务器
func (s *HTTPGinServer) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", s.config.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // 制品生成是长请求
	}

	logx.Info("🛜 Starting HTTP Server (Gin), Addr %s", addr)
	return s.server.ListenAndServe()
}

// Stop 停止 HTTP 服务器
func (s *HTTPGinServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// success 返回成功响应
func (s *HTTPGinServer) success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "Success",
		Data:    data,
	})
}

// error 返回错误响应
func (s *HTTPGinServer) error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ==================== 健康检查 ====================

func (s *HTTPGinServer) handleHealth(c *gin.Context) {
	s.success(c, gin.H{
		"status": "healthy",
	})
}
