package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntentionStatus string

const (
	IntentionPending  IntentionStatus = "pending"
	IntentionApproved IntentionStatus = "approved"
	IntentionRejected IntentionStatus = "rejected"
	IntentionExpired  IntentionStatus = "expired"
)

// RegistrationIntention is a membership request awaiting admin review.
// Token is set on approval and cleared once it has been used.
type RegistrationIntention struct {
	ID             uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	FullName       string          `gorm:"size:255;not null" json:"full_name"`
	Email          string          `gorm:"size:255;not null;index" json:"email"`
	Company        *string         `gorm:"size:255" json:"company"`
	Reason         *string         `gorm:"type:text" json:"reason"`
	Status         IntentionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Token          *string         `gorm:"size:64;uniqueIndex" json:"-"`
	TokenExpiresAt *time.Time      `json:"token_expires_at"`
	ReviewedBy     *uuid.UUID      `gorm:"type:char(36)" json:"reviewed_by"`
	ReviewedAt     *time.Time      `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *RegistrationIntention) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i RegistrationIntention) TokenExpired(now time.Time) bool {
	return i.TokenExpiresAt != nil && now.After(*i.TokenExpiresAt)
}
