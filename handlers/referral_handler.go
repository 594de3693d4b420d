package handlers

import (
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateReferralRequest struct {
	ToUserID        string          `json:"to_user_id" validate:"required,uuid"`
	Description     string          `json:"description" validate:"required"`
	OpportunityType string          `json:"opportunity_type" validate:"required,max=100"`
	PotentialValue  decimal.Decimal `json:"potential_value"`
}

type UpdateReferralStatusRequest struct {
	Status   string  `json:"status" validate:"required,oneof=pending in_progress closed_won closed_lost"`
	Feedback *string `json:"feedback"`
}

func (h *Handler) CreateReferral(c *fiber.Ctx) error {
	var req CreateReferralRequest
	if !bind(c, &req) {
		return nil
	}
	toUserID, _ := uuid.Parse(req.ToUserID)

	referral, err := h.Referrals.Create(c.UserContext(), middleware.CurrentUser(c).ID, services.CreateReferralInput{
		ToUserID:        toUserID,
		Description:     req.Description,
		OpportunityType: req.OpportunityType,
		PotentialValue:  req.PotentialValue,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(services.NewReferralView(*referral))
}

func (h *Handler) listReferrals(c *fiber.Ctx, find func(*fiber.Ctx) ([]models.Referral, error)) error {
	refs, err := find(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(services.NewReferralViews(refs))
}

func (h *Handler) ListReferrals(c *fiber.Ctx) error {
	return h.listReferrals(c, func(c *fiber.Ctx) ([]models.Referral, error) {
		return h.Referrals.FindAll(c.UserContext(), middleware.CurrentUser(c).ID)
	})
}

func (h *Handler) ListSentReferrals(c *fiber.Ctx) error {
	return h.listReferrals(c, func(c *fiber.Ctx) ([]models.Referral, error) {
		return h.Referrals.FindSent(c.UserContext(), middleware.CurrentUser(c).ID)
	})
}

func (h *Handler) ListReceivedReferrals(c *fiber.Ctx) error {
	return h.listReferrals(c, func(c *fiber.Ctx) ([]models.Referral, error) {
		return h.Referrals.FindReceived(c.UserContext(), middleware.CurrentUser(c).ID)
	})
}

func (h *Handler) GetReferral(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	referral, err := h.Referrals.FindOne(c.UserContext(), id, middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(services.NewReferralView(*referral))
}

func (h *Handler) UpdateReferralStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	var req UpdateReferralStatusRequest
	if !bind(c, &req) {
		return nil
	}
	referral, err := h.Referrals.UpdateStatus(c.UserContext(), id, middleware.CurrentUser(c).ID, models.ReferralStatus(req.Status), req.Feedback)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(services.NewReferralView(*referral))
}
