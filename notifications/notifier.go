package notifications

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/google/uuid"
)

// Pusher delivers a realtime payload to a connected user.
type Pusher interface {
	Push(userID uuid.UUID, payload interface{})
}

type Notifier struct {
	mailer      Mailer
	pusher      Pusher
	frontendURL string
	logger      *slog.Logger
	dispatch    func(func())
}

func NewNotifier(mailer Mailer, pusher Pusher, frontendURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		mailer:      mailer,
		pusher:      pusher,
		frontendURL: frontendURL,
		logger:      logger,
		dispatch:    func(f func()) { go f() },
	}
}

type PushMessage struct {
	Type     string      `json:"type"`
	Referral interface{} `json:"referral"`
}

func (n *Notifier) send(toName, toEmail, subject, body string) {
	n.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.mailer.SendEmail(ctx, toName, toEmail, subject, body); err != nil {
			n.logger.Error("failed to send email", "to", toEmail, "subject", subject, "error", err)
			return
		}
		n.logger.Info("email sent", "to", toEmail, "subject", subject)
	})
}

func (n *Notifier) Welcome(user models.User) {
	n.send(user.FullName, user.Email, "Welcome!",
		"<h1>Welcome!</h1><p>Thank you for registering. Your account is active; complete your membership with the token you receive once your intention is approved.</p>")
}

func (n *Notifier) IntentionSubmitted(intention models.RegistrationIntention) {
	n.send(intention.FullName, intention.Email, "We received your membership request",
		"<h1>Request received</h1><p>Our administrators will review your request shortly.</p>")
}

func (n *Notifier) IntentionApproved(intention models.RegistrationIntention, token string) {
	link := fmt.Sprintf("%s/complete-registration?token=%s", n.frontendURL, token)
	expiry := ""
	if intention.TokenExpiresAt != nil {
		expiry = fmt.Sprintf(" This link is valid until %s.", intention.TokenExpiresAt.Format("January 2, 2006 15:04 MST"))
	}
	n.send(intention.FullName, intention.Email, "Your membership request has been approved!",
		fmt.Sprintf("<h1>Congratulations!</h1><p>Your request was approved. Complete your profile using the link below.%s</p><p><a href='%s'>Complete registration</a></p>", expiry, link))
}

func (n *Notifier) IntentionRejected(intention models.RegistrationIntention) {
	n.send(intention.FullName, intention.Email, "Update on your membership request",
		"<h1>Request Update</h1><p>After careful review, your membership request was not approved at this time.</p>")
}

func (n *Notifier) ReferralReceived(referral models.Referral, view interface{}) {
	n.pusher.Push(referral.ToUserID, PushMessage{Type: "referral.received", Referral: view})
	n.send(referral.ToUser.FullName, referral.ToUser.Email, "You received a new referral",
		fmt.Sprintf("<h1>New referral</h1><p>%s referred a %s opportunity to you:</p><p>%s</p>",
			html.EscapeString(referral.FromUser.FullName),
			html.EscapeString(referral.OpportunityType),
			html.EscapeString(referral.Description)))
}

func (n *Notifier) ReferralStatusChanged(referral models.Referral, view interface{}) {
	n.pusher.Push(referral.FromUserID, PushMessage{Type: "referral.status_changed", Referral: view})
	n.send(referral.FromUser.FullName, referral.FromUser.Email, "Your referral was updated",
		fmt.Sprintf("<h1>Referral update</h1><p>%s moved your referral to <b>%s</b>.</p>",
			html.EscapeString(referral.ToUser.FullName), referral.Status))
}
