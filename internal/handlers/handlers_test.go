package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/otp"
	"github.com/example/foodhub/internal/storage"
)

type failingIssuer struct{ calls int }

func (f *failingIssuer) Issue(context.Context, authflow.PendingAuthRecord) error {
	f.calls++
	return errors.New("gateway down")
}

func decode(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("disk on fire") })

	status, body := decode(t, app, "GET", "/teapot", "")
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, map[string]any{"success": false, "error": "short and stout"}, body)
	assert.Zero(t, logs.Len())

	status, body = decode(t, app, "GET", "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, 1, logs.Len())
}

func TestSignIn_IssuerFailureDropsHandoff(t *testing.T) {
	mem := storage.NewMemory(0)
	defer mem.Close()
	issuer := &failingIssuer{}
	h := NewAuthHandler(authflow.NewHandoffStore(mem), map[authflow.Role]otp.Issuer{authflow.RoleConsumer: issuer}, nil)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Post("/auth/:role/sign-in", h.SignIn)

	status, body := decode(t, app, "POST", "/auth/consumer/sign-in", `{"method":"email","email":"a@b.co"}`)

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "could not send verification code", body["error"])
	assert.Equal(t, 1, issuer.calls)
	assert.Zero(t, mem.Len())
}

func TestSignIn_BadBody(t *testing.T) {
	mem := storage.NewMemory(0)
	defer mem.Close()
	h := NewAuthHandler(authflow.NewHandoffStore(mem), nil, nil)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Post("/auth/:role/sign-in", h.SignIn)

	status, _ := decode(t, app, "POST", "/auth/consumer/sign-in", `{"method":`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := decode(t, app, "POST", "/auth/consumer/sign-in", `{"method":"email","email":"a@b.co","role":"restaurant_partner"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "/verify-otp", body["navigate_to"])

	rec, err := authflow.NewHandoffStore(mem).Get(context.Background(), authflow.RoleConsumer, body["handoff_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, authflow.RoleConsumer, rec.Role)
}
