package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// GenerateReferralReport streams the referral report as a file download.
func (h *Handler) GenerateReferralReport(c *fiber.Ctx) error {
	report, err := h.Reports.Referrals(c.UserContext(), c.Query("format", "csv"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}

	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename))
	return c.Send(report.Body)
}
