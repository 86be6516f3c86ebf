package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dsd7888/EduNexusAI-sub000/internal/model"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.AnswerCache{},
		&model.StudyMaterial{},
		&model.QuizSet{},
		&model.Question{},
		&model.Submission{},
		&model.Artifact{},
		&model.ArtifactUnit{},
		&model.GenerationLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	return nil
}
