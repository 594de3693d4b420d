package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormIntentionRepository struct {
	db *gorm.DB
}

func NewIntentionRepository(db *gorm.DB) *GormIntentionRepository {
	return &GormIntentionRepository{db: db}
}

func (r *GormIntentionRepository) Create(ctx context.Context, intention *models.RegistrationIntention) error {
	return translate(r.db.WithContext(ctx).Create(intention).Error)
}

func (r *GormIntentionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.RegistrationIntention, error) {
	var intention models.RegistrationIntention
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&intention).Error; err != nil {
		return nil, translate(err)
	}
	return &intention, nil
}

func (r *GormIntentionRepository) FindByToken(ctx context.Context, token string) (*models.RegistrationIntention, error) {
	var intention models.RegistrationIntention
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&intention).Error; err != nil {
		return nil, translate(err)
	}
	return &intention, nil
}

// List returns every intention when status is empty.
func (r *GormIntentionRepository) List(ctx context.Context, status models.IntentionStatus) ([]models.RegistrationIntention, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var intentions []models.RegistrationIntention
	err := q.Find(&intentions).Error
	return intentions, translate(err)
}

func (r *GormIntentionRepository) Update(ctx context.Context, intention *models.RegistrationIntention) error {
	return updateRow(r.db.WithContext(ctx), intention)
}

func (r *GormIntentionRepository) SaveReview(ctx context.Context, intention *models.RegistrationIntention) error {
	intention.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.RegistrationIntention{}).
		Where("id = ? AND status = ?", intention.ID, models.IntentionPending).
		Updates(map[string]interface{}{
			"status":           intention.Status,
			"token":            intention.Token,
			"token_expires_at": intention.TokenExpiresAt,
			"reviewed_by":      intention.ReviewedBy,
			"reviewed_at":      intention.ReviewedAt,
			"updated_at":       intention.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, intention.ID); err != nil {
		return err
	}
	return ErrStale
}

func (r *GormIntentionRepository) ExpireTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RegistrationIntention{}).
		Where("status = ? AND token IS NOT NULL AND token_expires_at < ?", models.IntentionApproved, now).
		Updates(map[string]interface{}{
			"status": models.IntentionExpired,
			"token":  nil,
		})
	return result.RowsAffected, translate(result.Error)
}
