// Package repositories holds persistence for every resource. Each resource has
// an interface consumed by services and a GORM implementation.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrTokenConsumed is returned when an intention token was used concurrently.
	ErrTokenConsumed = errors.New("intention token already consumed")
	// ErrStale is returned when a conditional update lost to a concurrent writer.
	ErrStale = errors.New("record changed concurrently")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	FindByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.Group, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	FindForUser(ctx context.Context, userID uuid.UUID) ([]models.Referral, error)
	FindSent(ctx context.Context, userID uuid.UUID) ([]models.Referral, error)
	FindReceived(ctx context.Context, userID uuid.UUID) ([]models.Referral, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Referral, error)
	Update(ctx context.Context, referral *models.Referral) error
}

type IntentionRepository interface {
	Create(ctx context.Context, intention *models.RegistrationIntention) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RegistrationIntention, error)
	FindByToken(ctx context.Context, token string) (*models.RegistrationIntention, error)
	List(ctx context.Context, status models.IntentionStatus) ([]models.RegistrationIntention, error)
	Update(ctx context.Context, intention *models.RegistrationIntention) error
	// SaveReview persists a review decision only while the stored intention is
	// still pending; otherwise it returns ErrStale.
	SaveReview(ctx context.Context, intention *models.RegistrationIntention) error
	// ExpireTokens clears tokens of approved intentions past their expiry.
	ExpireTokens(ctx context.Context, now time.Time) (int64, error)
}

// RegistrationRepository links profile creation to intention consumption.
type RegistrationRepository interface {
	// CompleteRegistration creates the profile, consumes the intention token and
	// flags the user as a member, all or nothing.
	CompleteRegistration(ctx context.Context, intentionID uuid.UUID, token string, profile *models.Profile) error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrNotFound
	}
	return err
}

// updateRow writes every column of an existing row. Unlike Save it never
// falls back to an insert, so a row deleted concurrently stays deleted.
func updateRow(db *gorm.DB, value interface{}) error {
	result := db.Model(value).Select("*").Omit("created_at", clause.Associations).Updates(value)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
