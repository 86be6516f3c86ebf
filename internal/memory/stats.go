package memory

import (
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// GetStats 获取缓存统计信息
// 总查询数 = 条目数 + 命中数之和（每个条目创建时对应一次未命中查询）
func (c *Cache) GetStats() (*CacheStats, error) {
	var entryCount int64
	var hitSum int64

	// 条目总数
	if err := c.db.Model(&model.AnswerCache{}).Count(&entryCount).Error; err != nil {
		return nil, err
	}

	// 命中次数总和
	if err := c.db.Model(&model.AnswerCache{}).
		Select("COALESCE(SUM(hit_count), 0)").
		Scan(&hitSum).Error; err != nil {
		return nil, err
	}

	stats := &CacheStats{
		EntryCount:   entryCount,
		HitCount:     hitSum,
		MissCount:    entryCount,
		TotalQueries: entryCount + hitSum,
	}

	if stats.TotalQueries > 0 {
		stats.HitRate = float64(hitSum) / float64(stats.TotalQueries)
	}

	return stats, nil
}

// Clear 清理缓存
// 核心不做自动淘汰，这里是留给外部策略的清理入口
func (c *Cache) Clear(scope string) (int64, error) {
	query := c.db.Model(&model.AnswerCache{})

	// 如果指定了 scope，只清理该分区
	if scope != "" {
		query = query.Where("scope = ?", scope)
	} else {
		// gorm 默认拒绝无条件删除
		query = query.Session(&gorm.Session{AllowGlobalUpdate: true})
	}

	result := query.Delete(&model.AnswerCache{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear answer cache: %w", result.Error)
	}

	logx.Info("✅ Answer cache cleared: scope=%s, deleted=%d", scope, result.RowsAffected)
	return result.RowsAffected, nil
}
