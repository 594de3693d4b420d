// Package services holds the authorization-gated business rules for every
// resource. Handlers call services; services call repositories.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
)

// Notifier fans workflow outcomes out to email and realtime push.
type Notifier interface {
	Welcome(user models.User)
	IntentionSubmitted(intention models.RegistrationIntention)
	IntentionApproved(intention models.RegistrationIntention, token string)
	IntentionRejected(intention models.RegistrationIntention)
	ReferralReceived(referral models.Referral, view interface{})
	ReferralStatusChanged(referral models.Referral, view interface{})
}

func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "key", event.Key, "error", err)
	}
}

// notFound converts a repository miss into a NotFound service error and
// passes every other error through.
func notFound(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("%s not found", what)
	}
	return err
}
