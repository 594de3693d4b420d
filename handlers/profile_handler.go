package handlers

import (
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileRequest struct {
	Bio              *string  `json:"bio"`
	ProfessionalArea *string  `json:"professional_area" validate:"omitempty,max=255"`
	Interests        []string `json:"interests" validate:"omitempty,dive,min=1,max=100"`
	LinkedinURL      *string  `json:"linkedin_url" validate:"omitempty,url"`
	Website          *string  `json:"website" validate:"omitempty,url"`
	Skills           []string `json:"skills" validate:"omitempty,dive,min=1,max=100"`
	Goals            *string  `json:"goals"`
	BusinessSize     *string  `json:"business_size" validate:"omitempty,max=100"`
	TargetAudience   *string  `json:"target_audience" validate:"omitempty,max=255"`
	AvatarURL        *string  `json:"avatar_url" validate:"omitempty,url"`
}

type CompleteRegistrationRequest struct {
	ProfileRequest
	Token string `json:"token" validate:"required"`
}

func (r ProfileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		Bio:              r.Bio,
		ProfessionalArea: r.ProfessionalArea,
		Interests:        r.Interests,
		LinkedinURL:      r.LinkedinURL,
		Website:          r.Website,
		Skills:           r.Skills,
		Goals:            r.Goals,
		BusinessSize:     r.BusinessSize,
		TargetAudience:   r.TargetAudience,
		AvatarURL:        r.AvatarURL,
	}
}

// CreateProfile completes a registration with the token from an approved
// intention.
func (h *Handler) CreateProfile(c *fiber.Ctx) error {
	var req CompleteRegistrationRequest
	if !bind(c, &req) {
		return nil
	}
	profile, err := h.Profiles.CompleteRegistration(c.UserContext(), middleware.CurrentUser(c).ID, req.Token, req.ProfileRequest.input())
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *Handler) GetMyProfile(c *fiber.Ctx) error {
	profile, err := h.Profiles.FindByUserID(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(profile)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return nil
	}
	profile, err := h.Profiles.FindByUserID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(profile)
}

func (h *Handler) UpdateMyProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if !bind(c, &req) {
		return nil
	}
	profile, err := h.Profiles.Update(c.UserContext(), middleware.CurrentUser(c).ID, req.input())
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(profile)
}

func (h *Handler) DeleteMyProfile(c *fiber.Ctx) error {
	if err := h.Profiles.Remove(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) AdminDeleteProfile(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return nil
	}
	if err := h.Profiles.Remove(c.UserContext(), userID); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
