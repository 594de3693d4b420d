package handlers

import (
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/services"
	"github.com/gofiber/fiber/v2"
)

type SubmitIntentionRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	Company  *string `json:"company" validate:"omitempty,max=255"`
	Reason   *string `json:"reason"`
}

type ReviewIntentionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

func (h *Handler) SubmitIntention(c *fiber.Ctx) error {
	var req SubmitIntentionRequest
	if !bind(c, &req) {
		return nil
	}
	intention, err := h.Intentions.Submit(c.UserContext(), services.SubmitIntentionInput{
		FullName: req.FullName,
		Email:    req.Email,
		Company:  req.Company,
		Reason:   req.Reason,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(intention)
}

func (h *Handler) ListIntentions(c *fiber.Ctx) error {
	intentions, err := h.Intentions.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(intentions)
}

func (h *Handler) ReviewIntention(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	var req ReviewIntentionRequest
	if !bind(c, &req) {
		return nil
	}
	intention, err := h.Intentions.Review(c.UserContext(), id, middleware.CurrentUser(c).ID, req.Decision)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(intention)
}
