package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/catalog"
	"github.com/example/foodhub/internal/config"
	"github.com/example/foodhub/internal/database"
	"github.com/example/foodhub/internal/handlers"
	"github.com/example/foodhub/internal/logger"
	"github.com/example/foodhub/internal/otp"
	"github.com/example/foodhub/internal/routes"
	"github.com/example/foodhub/internal/services"
	"github.com/example/foodhub/internal/storage"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	var db *gorm.DB
	if cfg.SessionStore == "postgres" || cfg.ConsumerPolicy == "issued" || cfg.RestaurantPolicy == "issued" {
		db, err = database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("database", zap.Error(err))
		}
	}

	pendingStore := storage.NewMemory(cfg.HandoffTTL)
	defer pendingStore.Close()

	var durable storage.Store
	if cfg.SessionStore == "postgres" {
		durable = storage.NewGorm(db)
	} else {
		mem := storage.NewMemory(0)
		defer mem.Close()
		durable = mem
	}

	handoff := authflow.NewHandoffStore(pendingStore)
	sessions := authflow.NewSessionStore(durable)

	var issued *otp.IssuedCodes
	if db != nil {
		issued = otp.NewIssuedCodes(db, buildSender(cfg, log), cfg.CodeTTL)
	}

	policies := map[authflow.Role]string{
		authflow.RoleConsumer:          cfg.ConsumerPolicy,
		authflow.RoleRestaurantPartner: cfg.RestaurantPolicy,
	}
	verifiers := make(map[authflow.Role]otp.Verifier, len(policies))
	issuers := make(map[authflow.Role]otp.Issuer)
	for role, name := range policies {
		var issuedVerifier otp.Verifier
		if issued != nil {
			issuedVerifier = issued
		}
		v, err := otp.PolicyByName(name, cfg.DemoCode, issuedVerifier)
		if err != nil {
			log.Fatal("verification policy", zap.String("role", string(role)), zap.Error(err))
		}
		verifiers[role] = v
		if is, ok := v.(otp.Issuer); ok {
			issuers[role] = is
		}
		if name == "issued" {
			log.Info("verification policy", zap.String("role", string(role)), zap.String("policy", name))
		} else {
			log.Warn("verification policy is a placeholder, not a security control",
				zap.String("role", string(role)), zap.String("policy", name))
		}
	}

	screens := otp.NewScreens(func(role authflow.Role) otp.Params {
		return otp.Params{
			Handoff:         handoff,
			Sessions:        sessions,
			Verifier:        verifiers[role],
			Issuer:          issuers[role],
			Logger:          log.Named("otp"),
			CooldownSeconds: cfg.ResendCooldown,
			SuccessDelay:    cfg.SuccessDelay,
		}
	}, cfg.ScreenIdleTTL, nil)
	defer screens.Close()

	app := fiber.New(fiber.Config{
		AppName:      "FoodHub Backend",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, routes.Deps{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenExpires,
		Handoff:   handoff,
		Sessions:  sessions,
		Screens:   screens,
		Issuers:   issuers,
		Catalog:   catalog.Seed(time.Now()),
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatal("fiber.Listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(doneCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
	}
}

func buildSender(cfg *config.Config, log *zap.Logger) otp.CodeSender {
	logSender := services.NewLogSender(log)
	switch cfg.CodeSender {
	case "telegram":
		return services.NewTelegramService(cfg.TelegramToken, cfg.TelegramChatID, log)
	case "plum":
		plum := services.NewPlumGateway(services.PlumConfig{
			BaseURL:  cfg.PlumBaseURL,
			Username: cfg.PlumUsername,
			Password: cfg.PlumPassword,
		}, log)
		return services.ContactRouter{SMS: plum, Other: logSender}
	}
	return logSender
}
