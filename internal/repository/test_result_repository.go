package repository

import (
	"certify_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestResultRepository struct {
	DB *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{DB: db}
}

// Upsert stores the attempt as the user's only result for the test. The
// unique (user_id, test_id) index turns a concurrent second insert into an
// update inside the same statement, so there is no read-then-write window.
func (r *TestResultRepository) Upsert(ctx context.Context, result *model.TestResult) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "test_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind",
			"scope_id",
			"module_id",
			"score",
			"total_questions",
			"correct_answers",
			"answers",
			"passed",
			"time_spent",
			"completed_at",
			"updated_at",
		}),
	}).Create(result).Error
}

func (r *TestResultRepository) Find(ctx context.Context, userID, testID uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *TestResultRepository) Count(ctx context.Context, userID, testID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.TestResult{}).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Count(&n).Error
	return n, err
}

// MapByTests returns the user's results keyed by test id.
func (r *TestResultRepository) MapByTests(ctx context.Context, userID uint, testIDs []uint) (map[uint]model.TestResult, error) {
	out := make(map[uint]model.TestResult, len(testIDs))
	if len(testIDs) == 0 {
		return out, nil
	}

	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND test_id IN ?", userID, testIDs).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		out[res.TestID] = res
	}
	return out, nil
}

// ListPassedSince returns passing results written at or after since, oldest first.
func (r *TestResultRepository) ListPassedSince(ctx context.Context, since time.Time) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Where("passed = ? AND updated_at >= ?", true, since).
		Order("updated_at ASC, id ASC").
		Find(&results).Error
	return results, err
}
