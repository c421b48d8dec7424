package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/auth"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

const (
	bearerPrefix = "bearer "
	userIDKey    = "user_id"
)

type AuthMiddleware struct {
	gateway *auth.Gateway
	logger  *logrus.Logger
}

func NewAuthMiddleware(gateway *auth.Gateway, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		gateway: gateway,
		logger:  logger,
	}
}

// Authenticate resolves the bearer token to a user id and stores it in the
// request locals. Resolution is token-only and never touches storage.
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return apperrors.New(apperrors.CodeUnauthenticated, "Not authenticated")
		}

		userID, err := a.gateway.CurrentUser(token)
		if err != nil {
			a.logger.WithError(err).WithField("path", c.Path()).Debug("Token validation failed")
			return err
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// GetUserID returns the authenticated user id set by Authenticate.
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(userIDKey).(uint)
	return userID, ok && userID != 0
}
