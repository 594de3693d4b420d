package routes

import (
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Post("/intentions", h.SubmitIntention)

	admin := api.Group("/admin", h.Authenticator.Protected(), middleware.AdminRequired())

	intentions := admin.Group("/intentions")
	intentions.Get("", h.ListIntentions)
	intentions.Patch("/:id", h.ReviewIntention)

	admin.Delete("/profiles/:userId", h.AdminDeleteProfile)

	reports := admin.Group("/reports")
	reports.Get("/referrals", h.GenerateReferralReport)
}
