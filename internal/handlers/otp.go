package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/otp"
	"github.com/example/foodhub/internal/utils"
)

// HandoffHeader carries the token returned by sign-in.
const HandoffHeader = "X-Handoff-Token"

// OTPHandler drives OTP screens hosted in a Screens registry.
type OTPHandler struct {
	screens   *otp.Screens
	jwtSecret string
	tokenTTL  time.Duration
	log       *zap.Logger
}

// NewOTPHandler constructs an OTPHandler.
func NewOTPHandler(screens *otp.Screens, jwtSecret string, tokenTTL time.Duration, log *zap.Logger) *OTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OTPHandler{screens: screens, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

type digitRequest struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

type pasteRequest struct {
	Text string `json:"text"`
}

// Mount opens the screen or redirects to sign-in when nothing is pending.
func (h *OTPHandler) Mount(c *fiber.Ctx) error {
	return h.withScreen(c, func(*otp.Machine) error { return nil })
}

func (h *OTPHandler) Digit(c *fiber.Ctx) error {
	var req digitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return h.withScreen(c, func(m *otp.Machine) error {
		return m.OnDigitInput(c.UserContext(), req.Index, req.Value)
	})
}

func (h *OTPHandler) Backspace(c *fiber.Ctx) error {
	var req digitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return h.withScreen(c, func(m *otp.Machine) error {
		m.OnBackspace(req.Index)
		return nil
	})
}

func (h *OTPHandler) Paste(c *fiber.Ctx) error {
	var req pasteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return h.withScreen(c, func(m *otp.Machine) error {
		return m.OnPaste(c.UserContext(), req.Text)
	})
}

func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	return h.withScreen(c, func(m *otp.Machine) error {
		return m.Verify(c.UserContext())
	})
}

func (h *OTPHandler) Resend(c *fiber.Ctx) error {
	return h.withScreen(c, func(m *otp.Machine) error {
		_, err := m.Resend(c.UserContext())
		return err
	})
}

// Leave is navigation away from the screen. The pending record is dropped.
func (h *OTPHandler) Leave(c *fiber.Ctx) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}
	if err := h.screens.Leave(c.UserContext(), role, c.Get(HandoffHeader)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OTPHandler) withScreen(c *fiber.Ctx, event func(*otp.Machine) error) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}
	token := c.Get(HandoffHeader)

	m, err := h.screens.Open(c.UserContext(), role, token)
	if err != nil {
		if errors.Is(err, otp.ErrMissingPendingAuth) {
			c.Location(role.SignInRoute())
			return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{
				"success":     false,
				"error":       "no pending sign-in",
				"navigate_to": role.SignInRoute(),
			})
		}
		return err
	}

	return h.respond(c, role, m, event(m))
}

func (h *OTPHandler) respond(c *fiber.Ctx, role authflow.Role, m *otp.Machine, eventErr error) error {
	state := m.State()
	body := fiber.Map{
		"success": eventErr == nil,
		"state":   state,
	}
	if route := h.screens.NavigateTo(m); route != "" {
		body["navigate_to"] = route
	}

	// The bearer token goes out once, with the response that verified.
	if session, ok := m.ClaimSession(); ok {
		jwt, err := utils.GenerateToken(h.jwtSecret, session.ID, string(session.Role), h.tokenTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
		}
		body["session"] = session
		body["token"] = jwt
	}

	status := fiber.StatusOK
	switch {
	case eventErr == nil:
	case errors.Is(eventErr, otp.ErrIncompleteCode), errors.Is(eventErr, otp.ErrVerificationRejected):
		status = fiber.StatusUnprocessableEntity
		body["error"] = state.Error
	case errors.Is(eventErr, otp.ErrUnmounted):
		status = fiber.StatusGone
		body["error"] = "screen is no longer active"
	default:
		h.log.Error("otp event failed", zap.String("role", string(role)), zap.Error(eventErr))
		status = fiber.StatusBadGateway
		body["error"] = state.Error
	}
	return c.Status(status).JSON(body)
}
