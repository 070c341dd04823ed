package repository

import (
	"certify_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

// FindWithQuestions loads a test with its ordered questions and their options.
func (r *TestRepository) FindWithQuestions(ctx context.Context, id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Preload("Questions.Options").
		First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestRepository) FindByScope(ctx context.Context, kind model.TestKind, scopeID uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.WithContext(ctx).
		Where("kind = ? AND scope_id = ?", kind, scopeID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListForModule returns the module test plus every level and subtopic test
// beneath it.
func (r *TestRepository) ListForModule(ctx context.Context, moduleID uint, levelIDs, subTopicIDs []uint) ([]model.Test, error) {
	var tests []model.Test
	scope := r.DB.Where("kind = ? AND scope_id = ?", model.TestKindModule, moduleID)
	if len(levelIDs) > 0 {
		scope = scope.Or("kind = ? AND scope_id IN ?", model.TestKindLevel, levelIDs)
	}
	if len(subTopicIDs) > 0 {
		scope = scope.Or("kind = ? AND scope_id IN ?", model.TestKindSubTopic, subTopicIDs)
	}
	err := r.DB.WithContext(ctx).Where(scope).Find(&tests).Error
	return tests, err
}
