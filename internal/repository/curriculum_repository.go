package repository

import (
	"certify_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// CurriculumRepository reads the authored Module → Level → SubTopic → Content
// hierarchy. The tables are owned by authoring and never written here.
type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

// SubTopicScope locates a subtopic inside its module.
type SubTopicScope struct {
	SubTopicID uint
	LevelID    uint
	ModuleID   uint
}

func (r *CurriculumRepository) FindModule(ctx context.Context, id uint) (*model.Module, error) {
	var m model.Module
	if err := r.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindModuleTree loads the module with ordered levels, subtopics and published content.
func (r *CurriculumRepository) FindModuleTree(ctx context.Context, id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.WithContext(ctx).
		Preload("Levels", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Preload("Levels.SubTopics", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Preload("Levels.SubTopics.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_published = ?", true).Order("order_index ASC, id ASC")
		}).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CurriculumRepository) FindLevel(ctx context.Context, id uint) (*model.Level, error) {
	var l model.Level
	if err := r.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CurriculumRepository) FindSubTopic(ctx context.Context, id uint) (*model.SubTopic, error) {
	var st model.SubTopic
	if err := r.DB.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *CurriculumRepository) FindContent(ctx context.Context, id uint) (*model.Content, error) {
	var c model.Content
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ResolveSubTopic returns the level and module owning a subtopic.
func (r *CurriculumRepository) ResolveSubTopic(ctx context.Context, subTopicID uint) (*SubTopicScope, error) {
	var scope SubTopicScope
	result := r.DB.WithContext(ctx).
		Table("sub_topics").
		Select("sub_topics.id AS sub_topic_id, levels.id AS level_id, levels.module_id AS module_id").
		Joins("JOIN levels ON levels.id = sub_topics.level_id AND levels.deleted_at IS NULL").
		Where("sub_topics.id = ? AND sub_topics.deleted_at IS NULL", subTopicID).
		Limit(1).
		Scan(&scope)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &scope, nil
}

// ModuleSubTopicIDs returns every subtopic id under the module.
func (r *CurriculumRepository) ModuleSubTopicIDs(ctx context.Context, moduleID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.SubTopic{}).
		Joins("JOIN levels ON levels.id = sub_topics.level_id AND levels.deleted_at IS NULL").
		Where("levels.module_id = ?", moduleID).
		Order("sub_topics.id ASC").
		Pluck("sub_topics.id", &ids).Error
	return ids, err
}

func (r *CurriculumRepository) LevelSubTopicIDs(ctx context.Context, levelID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.SubTopic{}).
		Where("level_id = ?", levelID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// PublishedContentIDs returns the ids counted by subtopic completion.
func (r *CurriculumRepository) PublishedContentIDs(ctx context.Context, subTopicID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.Content{}).
		Where("sub_topic_id = ? AND is_published = ?", subTopicID, true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
