package handlers

import (
	"errors"
	"log/slog"

	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/services"
	"github.com/anjiri1684/membership_network/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

type Handler struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Groups     *services.GroupService
	Profiles   *services.ProfileService
	Referrals  *services.ReferralService
	Intentions *services.IntentionService
	Reports    *services.ReportService

	Authenticator *middleware.Authenticator
	Hub           *websocket.Hub
	Uploads       *UploadSigner
	Logger        *slog.Logger
}

func respondError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		return c.Status(se.Status()).JSON(fiber.Map{"error": se.Message})
	}
	logger.ErrorContext(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// bind parses the JSON body into req and runs its validate tags. On failure
// the 400 response has already been written.
func bind(c *fiber.Ctx, req interface{}) bool {
	if err := c.BodyParser(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		return false
	}
	if err := validate.Struct(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		return false
	}
	return true
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
