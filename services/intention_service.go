package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/metrics"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/anjiri1684/membership_network/utils"
	"github.com/google/uuid"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"

	msgAlreadyReviewed = "Intention has already been reviewed"
)

type SubmitIntentionInput struct {
	FullName string
	Email    string
	Company  *string
	Reason   *string
}

type IntentionService struct {
	intentions repositories.IntentionRepository
	notifier   Notifier
	publisher  events.Publisher
	metrics    *metrics.Metrics
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time
	newToken   func() (string, error)
}

func NewIntentionService(
	intentions repositories.IntentionRepository,
	notifier Notifier,
	publisher events.Publisher,
	m *metrics.Metrics,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *IntentionService {
	return &IntentionService{
		intentions: intentions,
		notifier:   notifier,
		publisher:  publisher,
		metrics:    m,
		tokenTTL:   tokenTTL,
		logger:     logger,
		now:        time.Now,
		newToken:   utils.GenerateIntentionToken,
	}
}

func (s *IntentionService) Submit(ctx context.Context, in SubmitIntentionInput) (*models.RegistrationIntention, error) {
	intention := &models.RegistrationIntention{
		FullName: strings.TrimSpace(in.FullName),
		Email:    normalizeEmail(in.Email),
		Company:  in.Company,
		Reason:   in.Reason,
		Status:   models.IntentionPending,
	}
	if err := s.intentions.Create(ctx, intention); err != nil {
		return nil, err
	}

	s.metrics.IntentionsSubmitted.Inc()
	s.logger.InfoContext(ctx, "intention submitted", "intention_id", intention.ID)
	s.notifier.IntentionSubmitted(*intention)
	publish(ctx, s.publisher, s.logger, events.New(events.IntentionSubmitted, intention.ID.String(), intention))
	return intention, nil
}

// List returns intentions with the given status, or all of them when status
// is empty.
func (s *IntentionService) List(ctx context.Context, status string) ([]models.RegistrationIntention, error) {
	st := models.IntentionStatus(strings.ToLower(status))
	switch st {
	case "", models.IntentionPending, models.IntentionApproved, models.IntentionRejected, models.IntentionExpired:
	default:
		return nil, Validation("status must be one of pending, approved, rejected, expired")
	}
	return s.intentions.List(ctx, st)
}

func (s *IntentionService) FindOne(ctx context.Context, id uuid.UUID) (*models.RegistrationIntention, error) {
	intention, err := s.intentions.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Intention")
	}
	return intention, nil
}

// Review approves or rejects a pending intention. Approval issues the
// one-time registration token and mails it to the applicant.
func (s *IntentionService) Review(ctx context.Context, id, reviewerID uuid.UUID, decision string) (*models.RegistrationIntention, error) {
	decision = strings.ToLower(decision)
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, Validation("decision must be approve or reject")
	}
	intention, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if intention.Status != models.IntentionPending {
		return nil, Conflict(msgAlreadyReviewed)
	}

	now := s.now()
	intention.ReviewedBy = &reviewerID
	intention.ReviewedAt = &now

	var token string
	if decision == DecisionApprove {
		token, err = s.newToken()
		if err != nil {
			return nil, err
		}
		expiresAt := now.Add(s.tokenTTL)
		intention.Status = models.IntentionApproved
		intention.Token = &token
		intention.TokenExpiresAt = &expiresAt
	} else {
		intention.Status = models.IntentionRejected
	}

	if err := s.intentions.SaveReview(ctx, intention); err != nil {
		switch {
		case errors.Is(err, repositories.ErrStale):
			return nil, Conflict(msgAlreadyReviewed)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, Conflict("Could not issue a unique token, try again")
		}
		return nil, notFound(err, "Intention")
	}

	s.metrics.IntentionsReviewed.WithLabelValues(decision).Inc()
	s.logger.InfoContext(ctx, "intention reviewed", "intention_id", intention.ID, "decision", decision, "reviewer", reviewerID)
	if decision == DecisionApprove {
		s.notifier.IntentionApproved(*intention, token)
	} else {
		s.notifier.IntentionRejected(*intention)
	}
	publish(ctx, s.publisher, s.logger, events.New(events.IntentionReviewed, intention.ID.String(), map[string]string{
		"intention_id": intention.ID.String(),
		"status":       string(intention.Status),
		"reviewed_by":  reviewerID.String(),
	}))
	return intention, nil
}

// ExpireTokens retires approved intentions whose token lapsed unused.
func (s *IntentionService) ExpireTokens(ctx context.Context) (int64, error) {
	n, err := s.intentions.ExpireTokens(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.IntentionTokensExpired.Add(float64(n))
		s.logger.InfoContext(ctx, "expired intention tokens", "count", n)
	}
	return n, nil
}
