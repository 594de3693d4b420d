package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex" json:"user_id"`
	Bio              *string    `gorm:"type:text" json:"bio"`
	ProfessionalArea *string    `gorm:"size:255" json:"professional_area"`
	Interests        StringList `gorm:"type:text" json:"interests"`
	LinkedinURL      *string    `gorm:"size:255" json:"linkedin_url"`
	Website          *string    `gorm:"size:255" json:"website"`
	Skills           StringList `gorm:"type:text" json:"skills"`
	Goals            *string    `gorm:"type:text" json:"goals"`
	BusinessSize     *string    `gorm:"size:100" json:"business_size"`
	TargetAudience   *string    `gorm:"size:255" json:"target_audience"`
	AvatarURL        *string    `gorm:"size:255" json:"avatar_url"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
