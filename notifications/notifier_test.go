package notifications

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type sentEmail struct {
	to, subject, body string
}

type capturingMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *capturingMailer) SendEmail(_ context.Context, _, toEmail, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{to: toEmail, subject: subject, body: body})
	return nil
}

type push struct {
	userID  uuid.UUID
	payload interface{}
}

type capturingPusher struct {
	pushes []push
}

func (p *capturingPusher) Push(userID uuid.UUID, payload interface{}) {
	p.pushes = append(p.pushes, push{userID, payload})
}

func syncNotifier(mailer Mailer, pusher Pusher) *Notifier {
	n := NewNotifier(mailer, pusher, "https://network.test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.dispatch = func(f func()) { f() }
	return n
}

func TestIntentionApprovedLinksToken(t *testing.T) {
	mailer := &capturingMailer{}
	n := syncNotifier(mailer, &capturingPusher{})

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n.IntentionApproved(models.RegistrationIntention{FullName: "Ada", Email: "ada@example.com", TokenExpiresAt: &expires}, "abc123")

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	body := mailer.sent[0].body
	if !strings.Contains(body, "https://network.test/complete-registration?token=abc123") {
		t.Fatalf("approval email missing link: %s", body)
	}
	if !strings.Contains(body, "March 1, 2026") {
		t.Fatalf("approval email missing expiry: %s", body)
	}
}

func TestReferralReceivedPushesAndEscapes(t *testing.T) {
	mailer := &capturingMailer{}
	pusher := &capturingPusher{}
	n := syncNotifier(mailer, pusher)

	to := models.User{ID: uuid.New(), FullName: "Bob", Email: "bob@example.com"}
	ref := models.Referral{
		ToUserID:        to.ID,
		ToUser:          to,
		FromUser:        models.User{FullName: "<Alice>"},
		OpportunityType: "web",
		Description:     "<script>x</script>",
	}
	n.ReferralReceived(ref, "view")

	if len(pusher.pushes) != 1 || pusher.pushes[0].userID != to.ID {
		t.Fatalf("expected a push to the receiver, got %+v", pusher.pushes)
	}
	msg, ok := pusher.pushes[0].payload.(PushMessage)
	if !ok || msg.Type != "referral.received" {
		t.Fatalf("unexpected push payload %#v", pusher.pushes[0].payload)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "bob@example.com" {
		t.Fatalf("expected email to receiver, got %+v", mailer.sent)
	}
	if strings.Contains(mailer.sent[0].body, "<script>") || strings.Contains(mailer.sent[0].body, "<Alice>") {
		t.Fatalf("email body was not escaped: %s", mailer.sent[0].body)
	}
}

func TestReferralStatusChangedNotifiesSender(t *testing.T) {
	pusher := &capturingPusher{}
	n := syncNotifier(&capturingMailer{}, pusher)

	from := uuid.New()
	n.ReferralStatusChanged(models.Referral{FromUserID: from, Status: models.ReferralClosedWon}, nil)

	if len(pusher.pushes) != 1 || pusher.pushes[0].userID != from {
		t.Fatalf("expected push to the sender, got %+v", pusher.pushes)
	}
}

func TestBrevoServiceSendEmail(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := &BrevoService{
		client:      resty.New().SetHeader("api-key", "key-1"),
		endpoint:    srv.URL,
		senderEmail: "noreply@network.test",
		senderName:  "Network",
	}
	if err := svc.SendEmail(context.Background(), "", "ada@example.com", "Hi", "<p>Hello</p>"); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if apiKey != "key-1" {
		t.Fatalf("expected api-key header, got %q", apiKey)
	}
	if got.Subject != "Hi" || len(got.To) != 1 || got.To[0]["name"] != "ada" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestBrevoServiceRejectsBadRecipient(t *testing.T) {
	svc := &BrevoService{client: resty.New(), endpoint: "http://127.0.0.1:0"}
	if err := svc.SendEmail(context.Background(), "x", "not-an-email", "s", "b"); err == nil {
		t.Fatal("expected invalid recipient error")
	}
}

func TestBrevoServiceSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := &BrevoService{client: resty.New(), endpoint: srv.URL}
	if err := svc.SendEmail(context.Background(), "Ada", "ada@example.com", "s", "b"); err == nil {
		t.Fatal("expected error on non-201 response")
	}
}

func TestBrevoServiceSendsOnceOnServerError(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	m := NewMailer("key-1", "noreply@network.test", "Network", slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc, ok := m.(*BrevoService)
	if !ok {
		t.Fatalf("expected *BrevoService, got %T", m)
	}
	svc.endpoint = srv.URL

	if err := svc.SendEmail(context.Background(), "Ada", "ada@example.com", "s", "b"); err == nil {
		t.Fatal("expected error on 504")
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Fatalf("expected a single delivery attempt, got %d", hits)
	}
}

func TestNewMailerFallsBackToNoop(t *testing.T) {
	m := NewMailer("", "", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, ok := m.(NoopMailer); !ok {
		t.Fatalf("expected NoopMailer, got %T", m)
	}
}
