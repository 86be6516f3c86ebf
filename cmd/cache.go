package cmd

import (
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dsd7888/EduNexusAI-sub000/internal/database"
	"github.com/dsd7888/EduNexusAI-sub000/internal/memory"
)

var cacheScope string

// cacheCmd 语义缓存管理命令组
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "管理语义答案缓存",
	Long:  `查看语义答案缓存的统计信息，或清理缓存条目。`,
}

// cacheStatsCmd 查看缓存统计
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "查看缓存统计信息",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 统计与清理不需要 embedder
		cache := memory.NewCache(database.GetDB(), nil, &memory.Config{Enabled: true})

		stats, err := cache.GetStats()
		if err != nil {
			return fmt.Errorf("failed to get cache stats: %w", err)
		}

		rows := [][]string{
			{"Entries", fmt.Sprintf("%d", stats.EntryCount)},
			{"Hits", fmt.Sprintf("%d", stats.HitCount)},
			{"Misses", fmt.Sprintf("%d", stats.MissCount)},
			{"Total Queries", fmt.Sprintf("%d", stats.TotalQueries)},
			{"Hit Rate", fmt.Sprintf("%.1f%%", stats.HitRate*100)},
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("Metric", "Value").
			Rows(rows...)

		fmt.Println(t)
		return nil
	},
}

// cacheClearCmd 清理缓存
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "清理缓存条目",
	Long:  `清理语义答案缓存。指定 --scope 时只清理该分区，否则清理全部。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := memory.NewCache(database.GetDB(), nil, &memory.Config{Enabled: true})

		deleted, err := cache.Clear(cacheScope)
		if err != nil {
			return err
		}

		logx.Info("Cache cleared, scope %s, deleted %d", cacheScope, deleted)
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().StringVar(&cacheScope, "scope", "", "只清理指定 scope 的缓存")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
