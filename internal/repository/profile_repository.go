package repository

import (
	"certify_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository stores the platform-wide certificate state kept on the
// user profile.
type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure creates an empty profile row for the user if none exists.
func (r *ProfileRepository) Ensure(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserProfile{UserID: userID}).Error
}

func (r *ProfileRepository) ArmCertificate(ctx context.Context, userID uint, availableAt time.Time) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("user_id = ? AND certificate_available_at IS NULL", userID).
		Update("certificate_available_at", availableAt)
	return result.RowsAffected > 0, result.Error
}

func (r *ProfileRepository) MarkCertificateIssued(ctx context.Context, userID uint, url, number string, at time.Time) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("user_id = ? AND certificate_issued = ?", userID, false).
		Updates(map[string]interface{}{
			"certificate_issued":    true,
			"certificate_url":       url,
			"certificate_number":    number,
			"certificate_issued_at": at,
		})
	return result.RowsAffected > 0, result.Error
}
