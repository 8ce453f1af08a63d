package main

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"markethub/internal/auth"
	"markethub/internal/client"
	"markethub/internal/config"
	"markethub/internal/db"
	"markethub/internal/events"
	"markethub/internal/handler"
	"markethub/internal/logging"
	"markethub/internal/model"
	"markethub/internal/notify"
	"markethub/internal/repository"
	"markethub/internal/router"
	"markethub/internal/service"
)

// @title Markethub Users API
// @version 1.0
// @description Users and authentication service with JWT token pairs, email confirmation and password reset.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		logger.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	hasher := auth.NewPasswordHasher()

	var sender notify.Sender = notify.NoopSender{}
	if cfg.SMTPHost != "" {
		emailSender, err := notify.NewEmailSender(cfg)
		if err != nil {
			logger.Error("email sender init failed", "error", err)
			os.Exit(1)
		}
		sender = emailSender
	} else {
		logger.Warn("SMTP not configured, account emails disabled")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL, logger)
	}

	productsClient := client.NewProductsClient(cfg.ProductServiceURL)

	authService := service.NewAuthService(userRepo, jwtService, hasher, sender, publisher, logger)
	userService := service.NewUserService(userRepo, productsClient, publisher, logger)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	router.RegisterUsers(e, jwtService, authHandler, userHandler)

	addr := ":" + cfg.ServerPort
	logger.Info("users service listening", "addr", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error("server start failed", "error", err)
		os.Exit(1)
	}
}
