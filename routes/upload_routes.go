package routes

import (
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", h.Authenticator.Protected())
	uploads.Get("/signature", h.GenerateUploadSignature)
}
