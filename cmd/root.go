package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsd7888/EduNexusAI-sub000/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "edunexus",
	Short: "学习资料生成与答疑引擎",
	Long: `EduNexus 是一个面向考试学习的生成与缓存引擎。

提供语义缓存的答疑问答、分阶段的学习制品生成（卡组/试卷）、
测验题目生成与提交判分能力。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认搜索 ./config.yaml, ~/.edunexus, /etc/edunexus)")
}
