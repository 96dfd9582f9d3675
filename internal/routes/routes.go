package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/catalog"
	"github.com/example/foodhub/internal/handlers"
	"github.com/example/foodhub/internal/middleware"
	"github.com/example/foodhub/internal/otp"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	JWTSecret string
	TokenTTL  time.Duration
	Handoff   *authflow.HandoffStore
	Sessions  *authflow.SessionStore
	Screens   *otp.Screens
	Issuers   map[authflow.Role]otp.Issuer
	Catalog   *catalog.Catalog
	Log       *zap.Logger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Handoff, d.Issuers, d.Log)
	otpHandler := handlers.NewOTPHandler(d.Screens, d.JWTSecret, d.TokenTTL, d.Log)
	sessionHandler := handlers.NewSessionHandler(d.Sessions, d.Log)
	listHandler := handlers.NewListHandler(d.Catalog)

	api := app.Group("/api")

	// Sign-in and OTP screens
	auth := api.Group("/auth/:role")
	auth.Post("/sign-in", authHandler.SignIn)
	auth.Post("/sign-up", authHandler.SignUp)

	screen := auth.Group("/otp")
	screen.Get("/", otpHandler.Mount)
	screen.Post("/digit", otpHandler.Digit)
	screen.Post("/backspace", otpHandler.Backspace)
	screen.Post("/paste", otpHandler.Paste)
	screen.Post("/verify", otpHandler.Verify)
	screen.Post("/resend", otpHandler.Resend)
	screen.Delete("/", otpHandler.Leave)

	// Authenticated session
	session := api.Group("/session/:role", middleware.AuthMiddleware(d.JWTSecret, d.Sessions, ""))
	session.Get("/me", sessionHandler.Me)
	session.Post("/logout", sessionHandler.Logout)

	// Admin lists
	admin := api.Group("/admin")
	admin.Get("/restaurants", listHandler.Restaurants)
	admin.Get("/orders", listHandler.Orders)
	admin.Get("/partners", listHandler.Partners)
	admin.Get("/customers", listHandler.Customers)

	// Restaurant partner area
	restaurant := api.Group("/restaurant", middleware.AuthMiddleware(d.JWTSecret, d.Sessions, authflow.RoleRestaurantPartner))
	restaurant.Get("/orders", listHandler.RestaurantOrders)
}
