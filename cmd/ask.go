package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsd7888/EduNexusAI-sub000/internal/database"
	"github.com/dsd7888/EduNexusAI-sub000/internal/embedding"
	"github.com/dsd7888/EduNexusAI-sub000/internal/llm"
	"github.com/dsd7888/EduNexusAI-sub000/internal/material"
	"github.com/dsd7888/EduNexusAI-sub000/internal/memory"
	"github.com/dsd7888/EduNexusAI-sub000/internal/service"
	"github.com/dsd7888/EduNexusAI-sub000/internal/tutor"
)

var askScope string

// askCmd 命令行答疑
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "向答疑引擎提问",
	Long:  `在命令行直接提问，命中语义缓存时立即返回，否则走完整生成流程。`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		ctx := context.Background()

		db := database.GetDB()

		embedSvc, err := embedding.NewService(&embedding.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}, nil)
		if err != nil {
			return err
		}

		semanticCache := memory.NewCache(db, embedSvc, &memory.Config{
			Enabled:             cfg.Cache.Enabled,
			SimilarityThreshold: cfg.Cache.SimilarityThreshold,
			MaxCandidates:       cfg.Cache.MaxCandidates,
		})

		gateway := llm.NewOpenAIClient(&llm.Config{
			Model:   cfg.LLM.Model,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
		})

		retriever := material.NewRetriever(db, 3)
		retriever.SetEmbeddingService(embedSvc)

		tutorSvc := tutor.NewService(semanticCache, gateway, retriever, service.NewGenerationLogService())

		result, err := tutorSvc.Answer(ctx, askScope, question)
		if err != nil {
			return err
		}

		if result.Cached {
			fmt.Println("(from cache)")
		}
		fmt.Println(result.Text)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askScope, "scope", "default", "问题所属的缓存分区")

	rootCmd.AddCommand(askCmd)
}
