package routes

import (
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	// Registration is public and must be registered ahead of the protected group.
	api.Post("/users", h.RegisterUser)

	users := api.Group("/users", h.Authenticator.Protected())
	users.Get("", h.GetAllUsers)
	users.Get("/me", h.GetMe)
	users.Get("/:id", h.GetUser)
	users.Patch("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
}
