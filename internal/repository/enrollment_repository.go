package repository

import (
	"certify_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) scoped(ctx context.Context, userID, moduleID uint) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("user_id = ? AND module_id = ?", userID, moduleID)
}

func (r *EnrollmentRepository) Find(ctx context.Context, userID, moduleID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// CreateIfAbsent inserts a pending enrollment unless one already exists.
func (r *EnrollmentRepository) CreateIfAbsent(ctx context.Context, userID, moduleID uint) error {
	e := &model.Enrollment{
		UserID:        userID,
		ModuleID:      moduleID,
		PaymentStatus: model.PaymentStatusPending,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e).Error
}

// MarkPaid completes payment on a pending enrollment. A paid enrollment is left
// untouched.
func (r *EnrollmentRepository) MarkPaid(ctx context.Context, userID, moduleID uint, reference string) (bool, error) {
	result := r.scoped(ctx, userID, moduleID).
		Where("payment_status <> ?", model.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"payment_status":    model.PaymentStatusCompleted,
			"payment_reference": reference,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *EnrollmentRepository) SetExamDate(ctx context.Context, userID, moduleID uint, examDate *time.Time) (bool, error) {
	result := r.scoped(ctx, userID, moduleID).Update("exam_date", examDate)
	return result.RowsAffected > 0, result.Error
}

// SetExamDateIfUnset only fills an empty exam date.
func (r *EnrollmentRepository) SetExamDateIfUnset(ctx context.Context, userID, moduleID uint, examDate time.Time) error {
	return r.scoped(ctx, userID, moduleID).
		Where("exam_date IS NULL").
		Update("exam_date", examDate).Error
}

func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID, moduleID uint, percentage int) error {
	return r.scoped(ctx, userID, moduleID).Update("progress_percentage", percentage).Error
}

// MarkExamPassed records the module test outcome.
func (r *EnrollmentRepository) MarkExamPassed(ctx context.Context, userID, moduleID uint, score int) error {
	return r.scoped(ctx, userID, moduleID).Updates(map[string]interface{}{
		"exam_completed": true,
		"exam_score":     score,
	}).Error
}

// MarkCompleted stamps completed_at once the enrollment is fully complete.
// An existing timestamp is never replaced.
func (r *EnrollmentRepository) MarkCompleted(ctx context.Context, userID, moduleID uint, at time.Time) (bool, error) {
	result := r.scoped(ctx, userID, moduleID).
		Where("completed_at IS NULL AND exam_completed = ? AND progress_percentage = ?", true, 100).
		Update("completed_at", at)
	return result.RowsAffected > 0, result.Error
}

// AddCompletedSubTopic inserts one member of the completed set; existing
// members are left as they are.
func (r *EnrollmentRepository) AddCompletedSubTopic(ctx context.Context, userID, moduleID, subTopicID uint, at time.Time) error {
	row := &model.EnrollmentSubTopic{
		UserID:      userID,
		ModuleID:    moduleID,
		SubTopicID:  subTopicID,
		CompletedAt: at,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *EnrollmentRepository) CompletedSubTopicIDs(ctx context.Context, userID, moduleID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.EnrollmentSubTopic{}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("sub_topic_id ASC").
		Pluck("sub_topic_id", &ids).Error
	return ids, err
}

// CountCompletedAmong counts how many of subTopicIDs are in the user's completed set.
func (r *EnrollmentRepository) CountCompletedAmong(ctx context.Context, userID uint, subTopicIDs []uint) (int64, error) {
	if len(subTopicIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.EnrollmentSubTopic{}).
		Where("user_id = ? AND sub_topic_id IN ?", userID, subTopicIDs).
		Count(&n).Error
	return n, err
}

func (r *EnrollmentRepository) UpsertLevelScore(ctx context.Context, score *model.EnrollmentLevelScore) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "level_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"module_id", "score", "passed", "recorded_at"}),
	}).Create(score).Error
}

func (r *EnrollmentRepository) LevelScores(ctx context.Context, userID, moduleID uint) ([]model.EnrollmentLevelScore, error) {
	var scores []model.EnrollmentLevelScore
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("level_id ASC").
		Find(&scores).Error
	return scores, err
}

// ArmCertificate sets certificate_available_at only while it is still NULL.
// It reports whether this call performed the transition.
func (r *EnrollmentRepository) ArmCertificate(ctx context.Context, userID, moduleID uint, availableAt time.Time) (bool, error) {
	result := r.scoped(ctx, userID, moduleID).
		Where("certificate_available_at IS NULL").
		Update("certificate_available_at", availableAt)
	return result.RowsAffected > 0, result.Error
}

// MarkCertificateIssued records the artifact unless another request issued first.
func (r *EnrollmentRepository) MarkCertificateIssued(ctx context.Context, userID, moduleID uint, url, number string, at time.Time) (bool, error) {
	result := r.scoped(ctx, userID, moduleID).
		Where("certificate_issued = ?", false).
		Updates(map[string]interface{}{
			"certificate_issued":    true,
			"certificate_url":       url,
			"certificate_number":    number,
			"certificate_issued_at": at,
		})
	return result.RowsAffected > 0, result.Error
}
