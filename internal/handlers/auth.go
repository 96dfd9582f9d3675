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

// AuthHandler bundles dependencies for the sign-in and sign-up endpoints.
type AuthHandler struct {
	handoff *authflow.HandoffStore
	issuers map[authflow.Role]otp.Issuer
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthHandler constructs an AuthHandler. issuers holds the roles whose
// verification policy sends real codes.
func NewAuthHandler(handoff *authflow.HandoffStore, issuers map[authflow.Role]otp.Issuer, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{handoff: handoff, issuers: issuers, log: log, now: time.Now}
}

// SignIn starts the OTP flow for an existing account.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	return h.submit(c, false)
}

// SignUp starts the OTP flow for a new account; a display name is required.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	return h.submit(c, true)
}

func (h *AuthHandler) submit(c *fiber.Ctx, signUp bool) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	var form authflow.SignInForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	form.IsSignUp = signUp
	form.Role = role

	pending, err := form.Submit(h.now())
	if err != nil {
		var verr *authflow.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"error":   "validation failed",
				"fields":  verr.Fields,
			})
		}
		return err
	}

	token := utils.NewHandoffToken()
	ctx := c.UserContext()
	if err := h.handoff.Put(ctx, token, pending); err != nil {
		return err
	}

	if issuer, ok := h.issuers[role]; ok {
		if err := issuer.Issue(ctx, pending); err != nil {
			h.log.Error("issue verification code", zap.String("role", string(role)), zap.Error(err))
			_ = h.handoff.Delete(ctx, role, token)
			return fiber.NewError(fiber.StatusBadGateway, "could not send verification code")
		}
	}

	h.log.Info("pending authentication created",
		zap.String("role", string(role)),
		zap.String("method", string(pending.Method)),
		zap.Bool("sign_up", signUp),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"handoff_token": token,
		"navigate_to":   role.OTPRoute(),
	})
}

func roleParam(c *fiber.Ctx) (authflow.Role, error) {
	role, err := authflow.ParseRole(c.Params("role"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return role, nil
}
