package services

import (
	"context"
	"strings"

	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/google/uuid"
)

type GroupInput struct {
	Name        *string
	Description *string
}

type GroupService struct {
	groups repositories.GroupRepository
}

func NewGroupService(groups repositories.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

func (s *GroupService) Create(ctx context.Context, requesterID uuid.UUID, in GroupInput) (*models.Group, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, Validation("Name is required")
	}
	group := &models.Group{
		Name:        strings.TrimSpace(*in.Name),
		Description: in.Description,
		AdminID:     requesterID,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// FindAll lists the groups the requester administers.
func (s *GroupService) FindAll(ctx context.Context, requesterID uuid.UUID) ([]models.Group, error) {
	return s.groups.FindByAdmin(ctx, requesterID)
}

// owned loads a group and rejects anyone but its admin.
func (s *GroupService) owned(ctx context.Context, id, requesterID uuid.UUID, action string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Group")
	}
	if group.AdminID != requesterID {
		return nil, Unauthorized("You do not have permission to " + action + " this group")
	}
	return group, nil
}

func (s *GroupService) FindOne(ctx context.Context, id, requesterID uuid.UUID) (*models.Group, error) {
	return s.owned(ctx, id, requesterID, "access")
}

func (s *GroupService) Update(ctx context.Context, id, requesterID uuid.UUID, in GroupInput) (*models.Group, error) {
	group, err := s.owned(ctx, id, requesterID, "update")
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, Validation("Name cannot be empty")
		}
		group.Name = name
	}
	if in.Description != nil {
		group.Description = in.Description
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, notFound(err, "Group")
	}
	return group, nil
}

func (s *GroupService) Remove(ctx context.Context, id, requesterID uuid.UUID) error {
	if _, err := s.owned(ctx, id, requesterID, "delete"); err != nil {
		return err
	}
	return notFound(s.groups.Delete(ctx, id), "Group")
}
