package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/shopspring/decimal"
)

type capturingRenderer struct {
	html string
}

func (r *capturingRenderer) Render(_ context.Context, html string) ([]byte, error) {
	r.html = html
	return []byte("%PDF-1.4"), nil
}

func seedReferrals(t *testing.T, f *fixture) {
	t.Helper()
	a := f.seedUser(t, "Alice", "alice@example.com", "password1", false)
	b := f.seedUser(t, "Bob <b>", "bob@example.com", "password1", false)
	svc := newReferralService(f)
	ctx := context.Background()

	won, err := svc.Create(ctx, a.ID, CreateReferralInput{ToUserID: b.ID, Description: "Shop, refit", OpportunityType: "retail", PotentialValue: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, won.ID, b.ID, models.ReferralClosedWon, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.Create(ctx, b.ID, CreateReferralInput{ToUserID: a.ID, Description: "Audit", OpportunityType: "finance", PotentialValue: decimal.RequireFromString("250.50")}); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestReferralReportCSV(t *testing.T) {
	f := newFixture(t)
	seedReferrals(t, f)
	svc := NewReportService(f.store.Referrals(), &capturingRenderer{})

	report, err := svc.Referrals(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.ContentType != "text/csv" || !strings.HasSuffix(report.Filename, ".csv") {
		t.Fatalf("unexpected report metadata %+v", report)
	}

	records, err := csv.NewReader(bytes.NewReader(report.Body)).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "id" {
		t.Fatalf("unexpected header %v", records[0])
	}
}

func TestReferralReportPDF(t *testing.T) {
	f := newFixture(t)
	seedReferrals(t, f)
	renderer := &capturingRenderer{}
	svc := NewReportService(f.store.Referrals(), renderer)

	report, err := svc.Referrals(context.Background(), ReportPDF, "", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %s", report.ContentType)
	}
	if !strings.Contains(renderer.html, "1250.5") {
		t.Fatalf("summary total missing from rendered html")
	}
	if strings.Contains(renderer.html, "Bob <b>") {
		t.Fatalf("names must be html-escaped")
	}
}

func TestReportPeriodValidation(t *testing.T) {
	svc := NewReportService(nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

	start, end, err := svc.ParsePeriod("2026-03-01", "2026-03-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) || end.Day() != 10 || end.Hour() != 23 {
		t.Fatalf("unexpected period %s - %s", start, end)
	}

	_, _, err = svc.ParsePeriod("2026-03-10", "2026-03-01")
	assertKind(t, err, KindValidation)
	_, _, err = svc.ParsePeriod("03/01/2026", "")
	assertKind(t, err, KindValidation)

	_, err = svc.Referrals(context.Background(), "xlsx", "", "")
	assertKind(t, err, KindValidation)
}

func TestSummarize(t *testing.T) {
	refs := []models.Referral{
		{Status: models.ReferralClosedWon, PotentialValue: decimal.NewFromInt(100)},
		{Status: models.ReferralClosedWon, PotentialValue: decimal.NewFromInt(50)},
		{Status: models.ReferralPending, PotentialValue: decimal.NewFromInt(10)},
	}
	s := Summarize(refs)
	if s.Total != 3 || !s.WonValue.Equal(decimal.NewFromInt(150)) || !s.PotentialValue.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.ByStatus[0].Status != models.ReferralPending || s.ByStatus[0].Count != 1 {
		t.Fatalf("unexpected status breakdown %+v", s.ByStatus)
	}
}
