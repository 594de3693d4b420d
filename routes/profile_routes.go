package routes

import (
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	profiles := api.Group("/profiles", h.Authenticator.Protected())
	profiles.Post("", h.CreateProfile)
	profiles.Get("/me", h.GetMyProfile)
	profiles.Patch("/me", h.UpdateMyProfile)
	profiles.Delete("/me", h.DeleteMyProfile)
	profiles.Get("/:userId", h.GetProfile)
}
