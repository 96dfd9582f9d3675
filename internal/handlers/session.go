package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/middleware"
)

// SessionHandler serves the authenticated session itself.
type SessionHandler struct {
	sessions *authflow.SessionStore
	log      *zap.Logger
}

func NewSessionHandler(sessions *authflow.SessionStore, log *zap.Logger) *SessionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, log: log}
}

// Me returns the current session.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	session, ok := middleware.GetCurrentSession(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{"success": true, "session": session})
}

// Logout deletes the session; its bearer tokens stop working.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	session, ok := middleware.GetCurrentSession(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err := h.sessions.Delete(c.UserContext(), session.Role, session.ID); err != nil {
		return err
	}
	h.log.Info("session ended", zap.String("role", string(session.Role)), zap.String("session_id", session.ID))
	return c.JSON(fiber.Map{
		"success":     true,
		"navigate_to": session.Role.SignInRoute(),
	})
}
