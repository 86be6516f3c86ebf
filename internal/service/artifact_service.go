package service

import (
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/database"
	"github.com/dsd7888/EduNexusAI-sub000/internal/generator"
	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// ArtifactService 制品存储服务
type ArtifactService struct {
	db *gorm.DB
}

// NewArtifactService 创建制品存储服务实例
func NewArtifactService() *ArtifactService {
	return &ArtifactService{
		db: database.GetDB(),
	}
}

// NewArtifactServiceWithDB 使用指定数据库连接创建实例（测试用）
func NewArtifactServiceWithDB(db *gorm.DB) *ArtifactService {
	return &ArtifactService{db: db}
}

// SaveResult 持久化一次生成结果
// 只在填充阶段整体结束后调用，未填充的单元不会作为最终数据写入
func (s *ArtifactService) SaveResult(req *generator.Request, result *generator.Result) (*model.Artifact, error) {
	artifact := &model.Artifact{
		ID:           uuid.New().String(),
		Scope:        req.Scope,
		Kind:         req.Kind,
		Topic:        req.Topic,
		Tier:         req.Tier,
		PlannedUnits: result.PlannedCount,
		FilledUnits:  result.FilledCount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(artifact).Error; err != nil {
			return fmt.Errorf("failed to create artifact: %w", err)
		}

		for _, u := range result.Units {
			unit := &model.ArtifactUnit{
				ArtifactID: artifact.ID,
				UnitIndex:  u.Index,
				Kind:       u.Kind,
				Title:      u.Title,
				Content:    u.Content,
			}
			if err := tx.Create(unit).Error; err != nil {
				return fmt.Errorf("failed to create artifact unit: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logx.Info("✅ Artifact saved: id=%s, kind=%s, units=%d", artifact.ID, artifact.Kind, result.FilledCount)
	return artifact, nil
}

// GetArtifact 读取制品及其单元（按 index 升序）
func (s *ArtifactService) GetArtifact(id string) (*model.Artifact, []model.ArtifactUnit, error) {
	var artifact model.Artifact
	if err := s.db.First(&artifact, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("artifact not found: %s", id)
		}
		return nil, nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	var units []model.ArtifactUnit
	if err := s.db.Where("artifact_id = ?", id).
		Order("unit_index ASC").
		Find(&units).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load artifact units: %w", err)
	}

	return &artifact, units, nil
}

// ListArtifacts 列出某个 scope 下的制品
func (s *ArtifactService) ListArtifacts(scope string) ([]model.Artifact, error) {
	query := s.db.Model(&model.Artifact{})
	if scope != "" {
		query = query.Where("scope = ?", scope)
	}

	var artifacts []model.Artifact
	if err := query.Order("created_at DESC").Find(&artifacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	return artifacts, nil
}
