package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anjiri1684/membership_network/cache"
	"github.com/anjiri1684/membership_network/metrics"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/anjiri1684/membership_network/utils"
)

const msgInvalidCredentials = "Invalid credentials"

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

type AuthService struct {
	users    repositories.UserRepository
	issuer   *utils.TokenIssuer
	denylist cache.Denylist
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(users repositories.UserRepository, issuer *utils.TokenIssuer, denylist cache.Denylist, m *metrics.Metrics, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, denylist: denylist, metrics: m, logger: logger, now: time.Now}
}

// Login answers every failure with the same message so callers cannot learn
// which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, Unauthorized(msgInvalidCredentials)
	}

	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)

	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt, User: *user}, nil
}

// Logout revokes the token id until the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.AccessClaims) error {
	if claims.ID == "" {
		return Validation("Token cannot be revoked")
	}
	ttl := s.issuer.TTL()
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}
