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
)

// RegisterProducts wires routes and middleware for the products service.
func RegisterProducts(
	e *echo.Echo,
	jwtService *auth.JWTService,
	productHandler *handler.ProductHandler,
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

	// Public browse routes
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/search", productHandler.SearchProducts)
	api.GET("/products/:id", productHandler.GetProduct)

	// Internal service-to-service cascade endpoint. Idempotent.
	api.PATCH("/products/deactivate-by-user/:userId", productHandler.DeactivateByUser)

	// Secured routes. Tokens come from the Authorization: Bearer header and
	// are checked for signature, lifetime, issuer and audience.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
	}), middleware.Identity())

	secured.POST("/products", productHandler.CreateProduct)
	secured.PUT("/products/:id", productHandler.UpdateProduct)
	secured.DELETE("/products/:id", productHandler.DeleteProduct)
}
