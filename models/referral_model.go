package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralStatus string

const (
	ReferralPending    ReferralStatus = "pending"
	ReferralInProgress ReferralStatus = "in_progress"
	ReferralClosedWon  ReferralStatus = "closed_won"
	ReferralClosedLost ReferralStatus = "closed_lost"
)

var referralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralPending:    {ReferralInProgress, ReferralClosedWon, ReferralClosedLost},
	ReferralInProgress: {ReferralClosedWon, ReferralClosedLost},
}

func (s ReferralStatus) Valid() bool {
	switch s {
	case ReferralPending, ReferralInProgress, ReferralClosedWon, ReferralClosedLost:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s ReferralStatus) Terminal() bool {
	return s == ReferralClosedWon || s == ReferralClosedLost
}

func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	for _, allowed := range referralTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Referral struct {
	ID              uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	FromUserID      uuid.UUID       `gorm:"type:char(36);not null;index" json:"from_user_id"`
	ToUserID        uuid.UUID       `gorm:"type:char(36);not null;index" json:"to_user_id"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	OpportunityType string          `gorm:"size:100;not null" json:"opportunity_type"`
	PotentialValue  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"potential_value"`
	Status          ReferralStatus  `gorm:"size:20;not null;default:'pending'" json:"status"`
	Feedback        *string         `gorm:"type:text" json:"feedback"`

	FromUser User `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"-"`
	ToUser   User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
