package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/localnerve/datapackage-registry/internal/types"
	"github.com/localnerve/datapackage-registry/internal/utils"
)

const userKey = "user"

// UserResolver turns a bearer token into the user it was issued to.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// ParseBearer extracts the token from an Authorization header of the exact
// form "bearer <token>". The scheme is case-insensitive; anything else,
// including extra spaces or tokens, is rejected.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", types.Unauthenticated("Authorization header is expected")
	}
	parts := strings.Split(header, " ")
	if !strings.EqualFold(parts[0], "bearer") {
		return "", types.Unauthenticated("Authorization header must start with bearer")
	}
	if len(parts) != 2 || parts[1] == "" {
		return "", types.Unauthenticated("Authorization header must be bearer token")
	}
	return parts[1], nil
}

// RequireUser rejects requests without a valid bearer token and stores the
// resolved user for the handler.
func RequireUser(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ParseBearer(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, err)
		}

		user, err := resolver.CurrentUser(c.UserContext(), token)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrUserNotFound):
			return utils.SendError(c, types.UserNotFound("User not found"))
		case errors.Is(err, services.ErrInvalidToken):
			return utils.SendError(c, types.Unauthenticated("Invalid token"))
		default:
			return utils.SendError(c, err)
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
