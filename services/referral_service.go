package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/metrics"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateReferralInput struct {
	ToUserID        uuid.UUID
	Description     string
	OpportunityType string
	PotentialValue  decimal.Decimal
}

// ReferralView is the response shape: the referral plus both parties.
type ReferralView struct {
	models.Referral
	FromUser models.UserSummary `json:"from_user"`
	ToUser   models.UserSummary `json:"to_user"`
}

func NewReferralView(r models.Referral) ReferralView {
	return ReferralView{Referral: r, FromUser: r.FromUser.Summary(), ToUser: r.ToUser.Summary()}
}

func NewReferralViews(refs []models.Referral) []ReferralView {
	views := make([]ReferralView, 0, len(refs))
	for _, r := range refs {
		views = append(views, NewReferralView(r))
	}
	return views
}

type ReferralService struct {
	referrals repositories.ReferralRepository
	users     repositories.UserRepository
	notifier  Notifier
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewReferralService(
	referrals repositories.ReferralRepository,
	users repositories.UserRepository,
	notifier Notifier,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReferralService {
	return &ReferralService{
		referrals: referrals,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *ReferralService) Create(ctx context.Context, fromUserID uuid.UUID, in CreateReferralInput) (*models.Referral, error) {
	if in.ToUserID == fromUserID {
		return nil, Validation("You cannot refer an opportunity to yourself")
	}
	if in.PotentialValue.IsNegative() {
		return nil, Validation("Potential value cannot be negative")
	}
	if _, err := s.users.FindByID(ctx, in.ToUserID); err != nil {
		return nil, notFound(err, "Receiver")
	}

	referral := &models.Referral{
		FromUserID:      fromUserID,
		ToUserID:        in.ToUserID,
		Description:     strings.TrimSpace(in.Description),
		OpportunityType: strings.TrimSpace(in.OpportunityType),
		PotentialValue:  in.PotentialValue.Round(2),
		Status:          models.ReferralPending,
	}
	if err := s.referrals.Create(ctx, referral); err != nil {
		return nil, notFound(err, "User")
	}

	s.metrics.ReferralsCreated.Inc()
	s.logger.InfoContext(ctx, "referral created", "referral_id", referral.ID, "from", fromUserID, "to", in.ToUserID)

	view := NewReferralView(*referral)
	s.notifier.ReferralReceived(*referral, view)
	publish(ctx, s.publisher, s.logger, events.New(events.ReferralCreated, referral.ID.String(), view))
	return referral, nil
}

// FindAll returns referrals the user sent or received.
func (s *ReferralService) FindAll(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	return s.referrals.FindForUser(ctx, userID)
}

func (s *ReferralService) FindSent(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	return s.referrals.FindSent(ctx, userID)
}

func (s *ReferralService) FindReceived(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	return s.referrals.FindReceived(ctx, userID)
}

func (s *ReferralService) FindOne(ctx context.Context, id, userID uuid.UUID) (*models.Referral, error) {
	referral, err := s.referrals.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Referral")
	}
	if referral.FromUserID != userID && referral.ToUserID != userID {
		return nil, Forbidden("You can only access your own referrals")
	}
	return referral, nil
}

// UpdateStatus moves a referral along its lifecycle. Only the receiver may
// do so and closed referrals stay closed.
func (s *ReferralService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ReferralStatus, feedback *string) (*models.Referral, error) {
	if !status.Valid() {
		return nil, Validation(fmt.Sprintf("Invalid status %q", status))
	}
	referral, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if referral.ToUserID != userID {
		return nil, Forbidden("Only the receiver can update the status")
	}
	if !referral.Status.CanTransitionTo(status) {
		if referral.Status.Terminal() {
			return nil, Conflict(fmt.Sprintf("Referral is already %s", referral.Status))
		}
		return nil, Conflict(fmt.Sprintf("Cannot change status from %s to %s", referral.Status, status))
	}

	previous := referral.Status
	referral.Status = status
	if feedback != nil {
		referral.Feedback = feedback
	}
	if err := s.referrals.Update(ctx, referral); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("Referral not found")
		}
		return nil, err
	}

	s.metrics.ReferralStatusChanges.WithLabelValues(string(status)).Inc()
	s.logger.InfoContext(ctx, "referral status changed", "referral_id", referral.ID, "from", previous, "to", status)

	view := NewReferralView(*referral)
	s.notifier.ReferralStatusChanged(*referral, view)
	publish(ctx, s.publisher, s.logger, events.New(events.ReferralStatusChanged, referral.ID.String(), view))
	return referral, nil
}
