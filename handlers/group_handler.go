package handlers

import (
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/services"
	"github.com/gofiber/fiber/v2"
)

type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if !bind(c, &req) {
		return nil
	}
	group, err := h.Groups.Create(c.UserContext(), middleware.CurrentUser(c).ID, services.GroupInput{
		Name:        &req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *Handler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.Groups.FindAll(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(groups)
}

func (h *Handler) GetGroup(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	group, err := h.Groups.FindOne(c.UserContext(), id, middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(group)
}

func (h *Handler) UpdateGroup(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	var req UpdateGroupRequest
	if !bind(c, &req) {
		return nil
	}
	group, err := h.Groups.Update(c.UserContext(), id, middleware.CurrentUser(c).ID, services.GroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(group)
}

func (h *Handler) DeleteGroup(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Groups.Remove(c.UserContext(), id, middleware.CurrentUser(c).ID); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
