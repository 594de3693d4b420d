package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/anjiri1684/membership_network/utils"
	"github.com/google/uuid"
)

const msgEmailTaken = "Email is already registered"

type CreateUserInput struct {
	FullName string
	Email    string
	Password string
}

// UpdateUserInput carries only the fields being changed.
type UpdateUserInput struct {
	FullName *string
	Email    *string
	Password *string
}

type UserService struct {
	users     repositories.UserRepository
	notifier  Notifier
	publisher events.Publisher
	logger    *slog.Logger
}

func NewUserService(users repositories.UserRepository, notifier Notifier, publisher events.Publisher, logger *slog.Logger) *UserService {
	return &UserService{users: users, notifier: notifier, publisher: publisher, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict(msgEmailTaken)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	s.notifier.Welcome(*user)
	publish(ctx, s.publisher, s.logger, events.New(events.UserRegistered, user.ID.String(), user.Summary()))
	return user, nil
}

func (s *UserService) FindAll(ctx context.Context, requester *models.User) ([]models.User, error) {
	if !requester.IsAdmin {
		return nil, Forbidden("Access denied. Only administrators can list all users.")
	}
	return s.users.FindAll(ctx)
}

func (s *UserService) FindOne(ctx context.Context, id uuid.UUID, requester *models.User) (*models.User, error) {
	if requester.ID != id && !requester.IsAdmin {
		return nil, Forbidden("You can only view your own profile")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, requester *models.User, in UpdateUserInput) (*models.User, error) {
	if requester.ID != id {
		return nil, Forbidden("You can only update your own profile")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}

	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		user.Email = normalizeEmail(*in.Email)
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict(msgEmailTaken)
		}
		return nil, notFound(err, "User")
	}
	return user, nil
}

func (s *UserService) Remove(ctx context.Context, id uuid.UUID, requester *models.User) error {
	if !requester.IsAdmin {
		return Forbidden("Only administrators can remove users")
	}
	if requester.ID == id {
		return Forbidden("You cannot remove your own user")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, "User")
	}

	s.logger.InfoContext(ctx, "user removed", "user_id", id, "removed_by", requester.ID)
	publish(ctx, s.publisher, s.logger, events.New(events.UserDeleted, id.String(), map[string]string{
		"user_id":    id.String(),
		"removed_by": requester.ID.String(),
	}))
	return nil
}
