package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/spf13/cobra"

	"github.com/dsd7888/EduNexusAI-sub000/internal/database"
	"github.com/dsd7888/EduNexusAI-sub000/internal/embedding"
	"github.com/dsd7888/EduNexusAI-sub000/internal/generator"
	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
	"github.com/dsd7888/EduNexusAI-sub000/internal/material"
	"github.com/dsd7888/EduNexusAI-sub000/internal/memory"
	"github.com/dsd7888/EduNexusAI-sub000/internal/server"
	"github.com/dsd7888/EduNexusAI-sub000/internal/service"
	"github.com/dsd7888/EduNexusAI-sub000/internal/tutor"
)

// serverCmd 启动 HTTP 服务
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 HTTP 服务",
	Long:  `启动 EduNexus HTTP 服务，提供答疑、制品生成、测验判分等接口。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 初始化数据库（含自动迁移）
		db := database.GetDB()

		// 2. 可选的 Redis embedding 缓存
		var redisCache *embedding.RedisCache
		if cfg.Redis.Enabled {
			var err error
			redisCache, err = embedding.NewRedisCache(
				cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				time.Duration(cfg.Redis.TTL)*time.Second)
			if err != nil {
				// Redis 不可用只是少了一层 embedding 缓存，不影响功能
				logx.Warn("Redis unavailable, embedding cache disabled: %v", err)
				redisCache = nil
			} else {
				logx.Info("✅ Redis embedding cache enabled: %s", cfg.Redis.Addr)
			}
		}

		// 3. Embedding 服务
		embedSvc, err := embedding.NewService(&embedding.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}, redisCache)
		if err != nil {
			return err
		}

		// 4. 语义缓存
		semanticCache := memory.NewCache(db, embedSvc, &memory.Config{
			Enabled:             cfg.Cache.Enabled,
			SimilarityThreshold: cfg.Cache.SimilarityThreshold,
			MaxCandidates:       cfg.Cache.MaxCandidates,
		})

		// 5. LLM 网关
		gateway := llm.NewOpenAIClient(&llm.Config{
			Model:   cfg.LLM.Model,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
		})

		// 6. 学习资料检索器
		retriever := material.NewRetriever(db, 3)
		retriever.SetEmbeddingService(embedSvc)

		// 7. 分阶段生成器
		staged := generator.NewStagedGenerator(gateway, &generator.Config{
			BatchSize:    cfg.Generator.BatchSize,
			BatchDelay:   time.Duration(cfg.Generator.BatchDelayMs) * time.Millisecond,
			MaxUnits:     cfg.Generator.MaxUnits,
			PromptMaxLen: cfg.Generator.PromptMaxLen,
		})

		// 8. 业务服务
		logSvc := service.NewGenerationLogService()
		tutorSvc := tutor.NewService(semanticCache, gateway, retriever, logSvc)
		artifactSvc := service.NewArtifactService()
		quizSvc := service.NewQuizService(gateway)

		// 9. HTTP 服务器
		httpServer := server.NewHTTPGinServer(cfg, &server.Deps{
			TutorSvc:    tutorSvc,
			Cache:       semanticCache,
			Generator:   staged,
			ArtifactSvc: artifactSvc,
			QuizSvc:     quizSvc,
			Materials:   retriever,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.Start()
		}()

		// 等待退出信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logx.Info("Received signal %s, shutting down", sig)
		}

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Stop(ctx); err != nil {
			logx.Error("HTTP server shutdown error: %v", err)
		}

		if redisCache != nil {
			_ = redisCache.Close()
		}
		if err := database.Close(); err != nil {
			logx.Error("Database close error: %v", err)
		}

		logx.Info("✅ Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
