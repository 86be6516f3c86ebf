package service

import (
	"cnb.cool/zhiqiangwang/pkg/logx"
	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/database"
	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// GenerationLogService 生成调用记录服务
type GenerationLogService struct {
	db *gorm.DB
}

// NewGenerationLogService 创建生成调用记录服务实例
func NewGenerationLogService() *GenerationLogService {
	return &GenerationLogService{
		db: database.GetDB(),
	}
}

// NewGenerationLogServiceWithDB 使用指定数据库连接创建实例（测试用）
func NewGenerationLogServiceWithDB(db *gorm.DB) *GenerationLogService {
	return &GenerationLogService{db: db}
}

// LogParams 生成调用记录参数
type LogParams struct {
	Task    string
	Scope   string
	Cached  bool
	Success bool
	Latency int64
	Err     error
}

// Record 写入一条生成调用记录
// 仅作观测用途，失败只打日志，永不向上传播
func (s *GenerationLogService) Record(params *LogParams) {
	entry := &model.GenerationLog{
		Task:    params.Task,
		Scope:   params.Scope,
		Cached:  params.Cached,
		Success: params.Success,
		Latency: params.Latency,
	}
	if params.Err != nil {
		entry.ErrorMsg = params.Err.Error()
	}

	if err := s.db.Create(entry).Error; err != nil {
		logx.Warn("Failed to save generation log: %v", err)
	}
}

// CountByTask 按任务统计调用次数
func (s *GenerationLogService) CountByTask(task string) (int64, error) {
	var count int64
	err := s.db.Model(&model.GenerationLog{}).
		Where("task = ?", task).
		Count(&count).Error
	return count, err
}
