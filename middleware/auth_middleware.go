package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anjiri1684/membership_network/cache"
	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/anjiri1684/membership_network/utils"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const (
	userKey   = "current_user"
	claimsKey = "claims"
)

var (
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserGone     = errors.New("user no longer exists")
)

type Authenticator struct {
	issuer   *utils.TokenIssuer
	users    repositories.UserRepository
	denylist cache.Denylist
	logger   *slog.Logger
}

func NewAuthenticator(issuer *utils.TokenIssuer, users repositories.UserRepository, denylist cache.Denylist, logger *slog.Logger) *Authenticator {
	return &Authenticator{issuer: issuer, users: users, denylist: denylist, logger: logger}
}

// Resolve checks that a validly signed token has not been revoked and that
// its subject still exists.
func (a *Authenticator) Resolve(ctx context.Context, claims *utils.AccessClaims) (*models.User, error) {
	if claims.ID != "" {
		revoked, err := a.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	userID, err := claims.SubjectID()
	if err != nil {
		return nil, err
	}
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	return user, nil
}

// ResolveToken parses a raw token string; used where no Authorization header
// is available.
func (a *Authenticator) ResolveToken(ctx context.Context, token string) (*models.User, *utils.AccessClaims, error) {
	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, nil, err
	}
	user, err := a.Resolve(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

func (a *Authenticator) Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     a.issuer.Secret(),
		SigningMethod:  "HS256",
		ErrorHandler:   jwtError,
		SuccessHandler: a.resolveUser,
	})
}

func (a *Authenticator) resolveUser(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, utils.ErrInvalidToken)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, utils.ErrInvalidToken)
	}
	claims, err := utils.ClaimsFromMap(mapClaims)
	if err != nil {
		return jwtError(c, err)
	}

	user, err := a.Resolve(c.UserContext(), claims)
	if err != nil {
		if !errors.Is(err, ErrTokenRevoked) && !errors.Is(err, ErrUserGone) && !errors.Is(err, utils.ErrInvalidToken) {
			a.logger.ErrorContext(c.UserContext(), "failed to resolve token subject", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		return jwtError(c, err)
	}

	c.Locals(userKey, user)
	c.Locals(claimsKey, claims)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func CurrentClaims(c *fiber.Ctx) *utils.AccessClaims {
	claims, _ := c.Locals(claimsKey).(*utils.AccessClaims)
	return claims
}
