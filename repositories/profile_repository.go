package repositories

import (
	"context"

	"github.com/anjiri1684/membership_network/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *GormProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return updateRow(r.db.WithContext(ctx), profile)
}

func (r *GormProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Profile{}, "user_id = ?", userID)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteRegistration implements RegistrationRepository.
func (r *GormProfileRepository) CompleteRegistration(ctx context.Context, intentionID uuid.UUID, token string, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(profile).Error; err != nil {
			return translate(err)
		}

		consumed := tx.Model(&models.RegistrationIntention{}).
			Where("id = ? AND token = ? AND status = ?", intentionID, token, models.IntentionApproved).
			Update("token", nil)
		if consumed.Error != nil {
			return translate(consumed.Error)
		}
		if consumed.RowsAffected != 1 {
			return ErrTokenConsumed
		}

		return translate(tx.Model(&models.User{}).
			Where("id = ?", profile.UserID).
			Update("is_member", true).Error)
	})
}
