package handlers

import (
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/services"
	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if !bind(c, &req) {
		return nil
	}

	result, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(result)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}
	if err := h.Auth.Logout(c.UserContext(), claims); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if !bind(c, &req) {
		return nil
	}

	user, err := h.Users.Create(c.UserContext(), services.CreateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
