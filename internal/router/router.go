package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"foodshare/internal/auth"
	"foodshare/internal/config"
	"foodshare/internal/handler"
	"foodshare/internal/logger"
	"foodshare/internal/metrics"
	"foodshare/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	advertHandler *handler.AdvertHandler,
	messageHandler *handler.MessageHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/refresh", authHandler.Refresh)

	// Secured routes. Requests without a valid token are bounced to the login
	// route, matching the browser-facing flow.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:   []byte(cfg.JWTSecret),
		TokenLookup:  "header:" + echo.HeaderAuthorization,
		ErrorHandler: auth.RedirectToLogin,
	}))
	secured.Use(auth.RejectBlacklisted(tokenStore))

	activeRoles := auth.RequireRoles(model.RoleUser, model.RoleAdmin)
	adminOnly := auth.RequireRoles(model.RoleAdmin)

	secured.POST("/logout", authHandler.Logout, activeRoles)

	// Account routes
	secured.GET("/account", userHandler.Account, activeRoles)
	secured.PUT("/account/details", userHandler.UpdateDetails, activeRoles)
	secured.DELETE("/account", userHandler.DeleteAccount, activeRoles)
	secured.PUT("/account/newsletter", userHandler.Newsletter, activeRoles)

	// Advert routes
	secured.POST("/adverts", advertHandler.Create, activeRoles)
	secured.GET("/adverts", advertHandler.List, activeRoles)
	secured.GET("/adverts/:id", advertHandler.Details, activeRoles)
	secured.POST("/adverts/:id/collect", advertHandler.Collect, activeRoles)
	secured.DELETE("/adverts/:id", advertHandler.Delete, activeRoles)

	// Message routes
	secured.GET("/messages", messageHandler.Conversations, activeRoles)
	secured.GET("/messages/:id", messageHandler.Chat, activeRoles)
	secured.POST("/messages/:id", messageHandler.Send, activeRoles)

	// Admin routes
	secured.GET("/admin", adminHandler.Dashboard, adminOnly)
	secured.POST("/admin/accounts", adminHandler.CreateAdmin, adminOnly)
	secured.GET("/admin/users/:id", adminHandler.UserOverview, adminOnly)
	secured.DELETE("/admin/users/:id", adminHandler.DeleteUser, adminOnly)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
