package handlers

import (
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/services"
	"github.com/gofiber/fiber/v2"
)

type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.Users.FindAll(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(users)
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	user, err := h.Users.FindOne(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(user)
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	var req UpdateUserRequest
	if !bind(c, &req) {
		return nil
	}

	user, err := h.Users.Update(c.UserContext(), id, middleware.CurrentUser(c), services.UpdateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(user)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Users.Remove(c.UserContext(), id, middleware.CurrentUser(c)); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
