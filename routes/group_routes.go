package routes

import (
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func GroupRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	groups := api.Group("/groups", h.Authenticator.Protected())
	groups.Post("", h.CreateGroup)
	groups.Get("", h.ListGroups)
	groups.Get("/:id", h.GetGroup)
	groups.Patch("/:id", h.UpdateGroup)
	groups.Delete("/:id", h.DeleteGroup)
}
