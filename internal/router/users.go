package router

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"markethub/internal/auth"
	"markethub/internal/handler"
	"markethub/internal/middleware"
	"markethub/internal/model"
)

// RegisterUsers wires routes and middleware for the users service.
func RegisterUsers(
	e *echo.Echo,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public auth routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/confirm-email", authHandler.ConfirmEmail)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes. Tokens come from the Authorization: Bearer header and
	// are checked for signature, lifetime, issuer and audience.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
	}), middleware.Identity())

	secured.GET("/users", userHandler.ListUsers)
	secured.GET("/users/:id", userHandler.GetUser)

	// Administrative mutations
	admin := secured.Group("", middleware.RequireRole(string(model.RoleAdmin)))
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)
	admin.PATCH("/users/:id/activate", userHandler.ActivateUser)
	admin.PATCH("/users/:id/deactivate", userHandler.DeactivateUser)
	admin.PATCH("/users/:id/role", userHandler.SetRole)
}
