package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/metrics"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories/memory"
	"github.com/anjiri1684/membership_network/utils"
)

type recordingNotifier struct {
	mu       sync.Mutex
	welcomed []string
	approved map[string]string
	rejected []string
	received []models.Referral
	changed  []models.Referral
}

func (n *recordingNotifier) Welcome(user models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, user.Email)
}

func (n *recordingNotifier) IntentionSubmitted(models.RegistrationIntention) {}

func (n *recordingNotifier) IntentionApproved(intention models.RegistrationIntention, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.approved == nil {
		n.approved = map[string]string{}
	}
	n.approved[intention.Email] = token
}

func (n *recordingNotifier) IntentionRejected(intention models.RegistrationIntention) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, intention.Email)
}

func (n *recordingNotifier) ReferralReceived(referral models.Referral, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, referral)
}

func (n *recordingNotifier) ReferralStatusChanged(referral models.Referral, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, referral)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	notifier  *recordingNotifier
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store:     memory.NewStore(),
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		metrics:   metrics.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *fixture) seedUser(t *testing.T, name, email, password string, admin bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{FullName: name, Email: email, PasswordHash: hash, IsAdmin: admin}
	if err := f.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if !IsKind(err, kind) {
		t.Fatalf("expected error kind %d, got %v", kind, err)
	}
}

func assertMessage(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil || err.Error() != msg {
		t.Fatalf("expected message %q, got %v", msg, err)
	}
}

func strPtr(s string) *string { return &s }
