package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/storage"
	"github.com/example/foodhub/internal/utils"
)

const testSecret = "test-secret"

func setup(t *testing.T) (*fiber.App, *authflow.SessionStore) {
	t.Helper()
	mem := storage.NewMemory(0)
	t.Cleanup(func() { mem.Close() })
	sessions := authflow.NewSessionStore(mem)

	app := fiber.New()
	app.Get("/session/:role/me", AuthMiddleware(testSecret, sessions, ""), func(c *fiber.Ctx) error {
		s, ok := GetCurrentSession(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(s.Contact)
	})
	app.Get("/restaurant", AuthMiddleware(testSecret, sessions, authflow.RoleRestaurantPartner), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, sessions
}

func commit(t *testing.T, sessions *authflow.SessionStore, role authflow.Role) (authflow.AuthenticatedSessionRecord, string) {
	t.Helper()
	rec, err := sessions.Commit(context.Background(), authflow.PendingAuthRecord{
		Method:  authflow.MethodPhone,
		Contact: "+1 5551234567",
		Role:    role,
	})
	require.NoError(t, err)
	token, err := utils.GenerateToken(testSecret, rec.ID, string(role), time.Hour)
	require.NoError(t, err)
	return rec, token
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app, sessions := setup(t)
	rec, token := commit(t, sessions, authflow.RoleConsumer)
	_, partnerToken := commit(t, sessions, authflow.RoleRestaurantPartner)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/session/consumer/me", token))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/session/consumer/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/session/consumer/me", "garbage"))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/session/restaurant/me", token))
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/session/driver/me", token))

	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/restaurant", partnerToken))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/restaurant", token))

	require.NoError(t, sessions.Delete(context.Background(), authflow.RoleConsumer, rec.ID))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/session/consumer/me", token))
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	app, sessions := setup(t)
	rec, _ := commit(t, sessions, authflow.RoleConsumer)
	forged, err := utils.GenerateToken("other-secret", rec.ID, "consumer", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/session/consumer/me", forged))
}
