package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/session"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /api/auth; the session-guarded endpoints sit behind SessionAuth. The
// endpoints that trigger outbound email additionally pass through the
// rate limiter so one caller cannot flood an inbox.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, store session.Store, rdb *redis.Client) {
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/api/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/verify-otp", a.VerifyOTP)
	g.POST("/resend-otp", a.ResendOTP, limiter)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword, limiter)
	g.POST("/reset-password", a.ResetPassword)
	// Logout is deliberately outside the session guard: calling it
	// without a live session still succeeds.
	g.POST("/logout", a.Logout)

	// Everything below requires a session with an identity claim.
	auth := e.Group("/api/auth")
	auth.Use(middleware.SessionAuth(a.Cfg.SessionSecret, store))
	auth.GET("/dashboard", a.Dashboard)
	auth.GET("/dashboard-data", a.DashboardData)
	auth.GET("/me", a.Me)
}

// RegisterUsers registers the user administration endpoints. Listing is
// available to any authenticated user (the store trims fields by viewer
// role); mutations require an administrative role.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, secret string, store session.Store) {
	g := e.Group("/api/users")
	g.Use(middleware.SessionAuth(secret, store))
	g.GET("/list", u.List)

	admin := e.Group("/api/users")
	admin.Use(middleware.SessionAuth(secret, store))
	admin.Use(middleware.RequireRole("Admin", "Super Admin"))
	admin.POST("/update-role", u.UpdateRole)
	admin.POST("/update-status", u.UpdateStatus)
}
