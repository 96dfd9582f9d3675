package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/utils"
)

const sessionContextKey = "currentSession"

// AuthMiddleware validates the bearer token and loads the session it refers
// to. A token whose session was logged out is rejected. When role is empty
// the role is taken from the :role route parameter.
func AuthMiddleware(secret string, sessions *authflow.SessionStore, role authflow.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		want := role
		if want == "" {
			want, err = authflow.ParseRole(c.Params("role"))
			if err != nil {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
		}
		if authflow.Role(claims.Role) != want {
			return fiber.NewError(fiber.StatusForbidden, "token is not valid for this area")
		}

		session, err := sessions.Get(c.UserContext(), want, claims.SessionID)
		if err != nil {
			if errors.Is(err, authflow.ErrNoSession) {
				return fiber.NewError(fiber.StatusUnauthorized, "session has ended")
			}
			return err
		}

		c.Locals(sessionContextKey, session)
		return c.Next()
	}
}

// GetCurrentSession extracts the authenticated session from context.
func GetCurrentSession(c *fiber.Ctx) (authflow.AuthenticatedSessionRecord, bool) {
	session, ok := c.Locals(sessionContextKey).(authflow.AuthenticatedSessionRecord)
	return session, ok
}
