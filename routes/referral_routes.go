package routes

import (
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func ReferralRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	referrals := api.Group("/referrals", h.Authenticator.Protected())
	referrals.Post("", h.CreateReferral)
	referrals.Get("", h.ListReferrals)
	referrals.Get("/sent", h.ListSentReferrals)
	referrals.Get("/received", h.ListReceivedReferrals)
	referrals.Get("/:id", h.GetReferral)
	referrals.Patch("/:id/status", h.UpdateReferralStatus)
}
