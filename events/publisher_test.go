package events

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewStampsEvent(t *testing.T) {
	e := New(ReferralCreated, "ref-1", map[string]string{"id": "ref-1"})
	if e.ID == "" {
		t.Fatal("expected an event id")
	}
	if e.Type != ReferralCreated || e.Key != "ref-1" {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.OccurredAt.IsZero() || e.OccurredAt.Location().String() != "UTC" {
		t.Fatalf("expected a UTC timestamp, got %v", e.OccurredAt)
	}
}

func TestLogPublisherRecordsEvent(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	if err := p.Publish(context.Background(), New(UserRegistered, "user-1", nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.Contains(buf.String(), "type=user.registered") {
		t.Fatalf("event not logged: %s", buf.String())
	}
}
