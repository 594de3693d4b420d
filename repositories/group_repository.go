package repositories

import (
	"context"

	"github.com/anjiri1684/membership_network/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormGroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) Create(ctx context.Context, group *models.Group) error {
	return translate(r.db.WithContext(ctx).Omit("Admin").Create(group).Error)
}

func (r *GormGroupRepository) FindByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("created_at desc").Find(&groups).Error
	return groups, translate(err)
}

func (r *GormGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (r *GormGroupRepository) Update(ctx context.Context, group *models.Group) error {
	return updateRow(r.db.WithContext(ctx), group)
}

func (r *GormGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Group{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
