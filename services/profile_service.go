package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/metrics"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/google/uuid"
)

const (
	msgInvalidIntentionToken = "Invalid or expired token"
	msgIntentionNotApproved  = "This intention has not been approved yet"
)

// ProfileInput is shared by creation and partial updates; nil fields are
// left untouched.
type ProfileInput struct {
	Bio              *string
	ProfessionalArea *string
	Interests        []string
	LinkedinURL      *string
	Website          *string
	Skills           []string
	Goals            *string
	BusinessSize     *string
	TargetAudience   *string
	AvatarURL        *string
}

func (in ProfileInput) applyTo(p *models.Profile) {
	if in.Bio != nil {
		p.Bio = in.Bio
	}
	if in.ProfessionalArea != nil {
		p.ProfessionalArea = in.ProfessionalArea
	}
	if in.Interests != nil {
		p.Interests = models.StringList(in.Interests)
	}
	if in.LinkedinURL != nil {
		p.LinkedinURL = in.LinkedinURL
	}
	if in.Website != nil {
		p.Website = in.Website
	}
	if in.Skills != nil {
		p.Skills = models.StringList(in.Skills)
	}
	if in.Goals != nil {
		p.Goals = in.Goals
	}
	if in.BusinessSize != nil {
		p.BusinessSize = in.BusinessSize
	}
	if in.TargetAudience != nil {
		p.TargetAudience = in.TargetAudience
	}
	if in.AvatarURL != nil {
		p.AvatarURL = in.AvatarURL
	}
}

type ProfileService struct {
	profiles      repositories.ProfileRepository
	intentions    repositories.IntentionRepository
	registrations repositories.RegistrationRepository
	publisher     events.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

func NewProfileService(
	profiles repositories.ProfileRepository,
	intentions repositories.IntentionRepository,
	registrations repositories.RegistrationRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:      profiles,
		intentions:    intentions,
		registrations: registrations,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// CompleteRegistration creates the caller's profile from an approved
// intention token. The token is consumed in the same transaction, so a
// token completes at most one registration.
func (s *ProfileService) CompleteRegistration(ctx context.Context, userID uuid.UUID, token string, in ProfileInput) (*models.Profile, error) {
	if token == "" {
		return nil, Unauthorized(msgInvalidIntentionToken)
	}
	intention, err := s.intentions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthorized(msgInvalidIntentionToken)
		}
		return nil, err
	}
	if intention.Status != models.IntentionApproved {
		return nil, Unauthorized(msgIntentionNotApproved)
	}
	if intention.TokenExpired(s.now()) {
		return nil, Unauthorized(msgInvalidIntentionToken)
	}

	profile := &models.Profile{UserID: userID}
	in.applyTo(profile)

	err = s.registrations.CompleteRegistration(ctx, intention.ID, token, profile)
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, Conflict("Profile already exists for this user")
	case errors.Is(err, repositories.ErrTokenConsumed):
		return nil, Unauthorized(msgInvalidIntentionToken)
	case errors.Is(err, repositories.ErrNotFound):
		return nil, NotFound("User not found")
	case err != nil:
		return nil, err
	}

	s.metrics.RegistrationsCompleted.Inc()
	s.logger.InfoContext(ctx, "registration completed", "user_id", userID, "intention_id", intention.ID)
	publish(ctx, s.publisher, s.logger, events.New(events.RegistrationCompleted, userID.String(), map[string]string{
		"user_id":      userID.String(),
		"profile_id":   profile.ID.String(),
		"intention_id": intention.ID.String(),
	}))
	return profile, nil
}

func (s *ProfileService) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Profile")
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.Profile, error) {
	profile, err := s.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.applyTo(profile)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, notFound(err, "Profile")
	}
	return profile, nil
}

func (s *ProfileService) Remove(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.FindByUserID(ctx, userID); err != nil {
		return err
	}
	return notFound(s.profiles.DeleteByUserID(ctx, userID), "Profile")
}
