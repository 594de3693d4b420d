package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

func (r *GormReferralRepository) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("FromUser").Preload("ToUser")
}

func (r *GormReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	if err := r.db.WithContext(ctx).Omit("FromUser", "ToUser").Create(referral).Error; err != nil {
		return translate(err)
	}
	return translate(r.withParties(ctx).Where("id = ?", referral.ID).First(referral).Error)
}

func (r *GormReferralRepository) FindForUser(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.withParties(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at desc").
		Find(&referrals).Error
	return referrals, translate(err)
}

func (r *GormReferralRepository) FindSent(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.withParties(ctx).Where("from_user_id = ?", userID).Order("created_at desc").Find(&referrals).Error
	return referrals, translate(err)
}

func (r *GormReferralRepository) FindReceived(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.withParties(ctx).Where("to_user_id = ?", userID).Order("created_at desc").Find(&referrals).Error
	return referrals, translate(err)
}

func (r *GormReferralRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	var referral models.Referral
	if err := r.withParties(ctx).Where("id = ?", id).First(&referral).Error; err != nil {
		return nil, translate(err)
	}
	return &referral, nil
}

func (r *GormReferralRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.withParties(ctx).
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at desc").
		Find(&referrals).Error
	return referrals, translate(err)
}

func (r *GormReferralRepository) Update(ctx context.Context, referral *models.Referral) error {
	referral.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("id = ?", referral.ID).
		Updates(map[string]interface{}{
			"status":     referral.Status,
			"feedback":   referral.Feedback,
			"updated_at": referral.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
