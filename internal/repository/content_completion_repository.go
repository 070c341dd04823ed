package repository

import (
	"certify_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentCompletionRepository struct {
	DB *gorm.DB
}

func NewContentCompletionRepository(db *gorm.DB) *ContentCompletionRepository {
	return &ContentCompletionRepository{DB: db}
}

// MarkComplete 记录内容完成；重复调用不会报错，也不会改动首次完成时间
func (r *ContentCompletionRepository) MarkComplete(ctx context.Context, userID, contentID uint, at time.Time) error {
	completion := &model.ContentCompletion{
		UserID:      userID,
		ContentID:   contentID,
		CompletedAt: at,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(completion).Error
}

// CompletedSet returns which of contentIDs the user has completed.
func (r *ContentCompletionRepository) CompletedSet(ctx context.Context, userID uint, contentIDs []uint) (map[uint]bool, error) {
	done := make(map[uint]bool, len(contentIDs))
	if len(contentIDs) == 0 {
		return done, nil
	}

	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.ContentCompletion{}).
		Where("user_id = ? AND content_id IN ?", userID, contentIDs).
		Pluck("content_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}
