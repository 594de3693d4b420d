package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
)

//go:embed templates/referral_report.html
var reportTemplates embed.FS

var reportTemplate = template.Must(template.ParseFS(reportTemplates, "templates/referral_report.html"))

const (
	ReportCSV = "csv"
	ReportPDF = "pdf"

	reportDateLayout = "2006-01-02"
)

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ChromePDFRenderer prints through a headless Chrome instance.
type ChromePDFRenderer struct{}

func (ChromePDFRenderer) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdfBuffer, nil
}

type StatusCount struct {
	Status models.ReferralStatus `json:"status"`
	Count  int                   `json:"count"`
}

type ReportSummary struct {
	Total          int             `json:"total"`
	ByStatus       []StatusCount   `json:"by_status"`
	PotentialValue decimal.Decimal `json:"potential_value"`
	WonValue       decimal.Decimal `json:"won_value"`
}

type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ReportService struct {
	referrals repositories.ReferralRepository
	renderer  PDFRenderer
	now       func() time.Time
}

func NewReportService(referrals repositories.ReferralRepository, renderer PDFRenderer) *ReportService {
	return &ReportService{referrals: referrals, renderer: renderer, now: time.Now}
}

// ParsePeriod reads the YYYY-MM-DD bounds of a report. Missing bounds
// default to the last 30 days; the end date is inclusive.
func (s *ReportService) ParsePeriod(startDate, endDate string) (time.Time, time.Time, error) {
	end := s.now().UTC()
	if endDate != "" {
		t, err := time.Parse(reportDateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, Validation("end_date must be formatted as YYYY-MM-DD")
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	start := end.AddDate(0, 0, -30)
	if startDate != "" {
		t, err := time.Parse(reportDateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, Validation("start_date must be formatted as YYYY-MM-DD")
		}
		start = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, Validation("start_date must be before end_date")
	}
	return start, end, nil
}

func Summarize(refs []models.Referral) ReportSummary {
	counts := map[models.ReferralStatus]int{}
	summary := ReportSummary{Total: len(refs)}
	for _, r := range refs {
		counts[r.Status]++
		summary.PotentialValue = summary.PotentialValue.Add(r.PotentialValue)
		if r.Status == models.ReferralClosedWon {
			summary.WonValue = summary.WonValue.Add(r.PotentialValue)
		}
	}
	for _, st := range []models.ReferralStatus{
		models.ReferralPending, models.ReferralInProgress, models.ReferralClosedWon, models.ReferralClosedLost,
	} {
		summary.ByStatus = append(summary.ByStatus, StatusCount{Status: st, Count: counts[st]})
	}
	return summary
}

func (s *ReportService) Referrals(ctx context.Context, format, startDate, endDate string) (*Report, error) {
	if format == "" {
		format = ReportCSV
	}
	if format != ReportCSV && format != ReportPDF {
		return nil, Validation("format must be csv or pdf")
	}
	start, end, err := s.ParsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}
	refs, err := s.referrals.FindCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("referrals_%s_%s", start.Format(reportDateLayout), end.Format(reportDateLayout))
	if format == ReportCSV {
		body, err := referralCSV(refs)
		if err != nil {
			return nil, err
		}
		return &Report{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	}

	html, err := s.referralHTML(refs, start, end)
	if err != nil {
		return nil, err
	}
	body, err := s.renderer.Render(ctx, html)
	if err != nil {
		return nil, err
	}
	return &Report{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

func referralCSV(refs []models.Referral) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"id", "created_at", "from_user", "from_email", "to_user", "to_email",
		"opportunity_type", "potential_value", "status", "description", "feedback",
	})
	for _, r := range refs {
		feedback := ""
		if r.Feedback != nil {
			feedback = *r.Feedback
		}
		_ = w.Write([]string{
			r.ID.String(),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.FromUser.FullName, r.FromUser.Email,
			r.ToUser.FullName, r.ToUser.Email,
			r.OpportunityType,
			r.PotentialValue.StringFixed(2),
			string(r.Status),
			r.Description,
			feedback,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

type reportRow struct {
	CreatedAt       string
	From            string
	To              string
	OpportunityType string
	Status          models.ReferralStatus
	PotentialValue  string
	Description     string
}

func (s *ReportService) referralHTML(refs []models.Referral, start, end time.Time) (string, error) {
	rows := make([]reportRow, 0, len(refs))
	for _, r := range refs {
		rows = append(rows, reportRow{
			CreatedAt:       r.CreatedAt.Format(reportDateLayout),
			From:            r.FromUser.FullName,
			To:              r.ToUser.FullName,
			OpportunityType: r.OpportunityType,
			Status:          r.Status,
			PotentialValue:  r.PotentialValue.StringFixed(2),
			Description:     r.Description,
		})
	}
	data := struct {
		Start       string
		End         string
		GeneratedAt string
		Summary     ReportSummary
		Rows        []reportRow
	}{
		Start:       start.Format("January 2, 2006"),
		End:         end.Format("January 2, 2006"),
		GeneratedAt: s.now().Format("January 2, 2006 15:04"),
		Summary:     Summarize(refs),
		Rows:        rows,
	}

	var rendered bytes.Buffer
	if err := reportTemplate.Execute(&rendered, data); err != nil {
		return "", fmt.Errorf("render report template: %w", err)
	}
	return rendered.String(), nil
}
