package main

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"markethub/internal/auth"
	"markethub/internal/cache"
	"markethub/internal/config"
	"markethub/internal/db"
	"markethub/internal/handler"
	"markethub/internal/logging"
	"markethub/internal/model"
	"markethub/internal/repository"
	"markethub/internal/router"
	"markethub/internal/service"
)

// @title Markethub Products API
// @version 1.0
// @description Products service with ownership-checked CRUD, search and the per-user deactivation endpoint.
// @host localhost:8081
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

	if err := gormDB.AutoMigrate(&model.Product{}); err != nil {
		logger.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	productRepo := repository.NewProductRepository(gormDB)
	productService := service.NewProductService(productRepo, cacheClient, logger)
	productHandler := handler.NewProductHandler(productService)

	router.RegisterProducts(e, jwtService, productHandler)

	addr := ":" + cfg.ServerPort
	logger.Info("products service listening", "addr", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error("server start failed", "error", err)
		os.Exit(1)
	}
}
