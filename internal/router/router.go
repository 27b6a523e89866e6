// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/config"
	"github.com/vergon/rgr-api/internal/handler"
	"github.com/vergon/rgr-api/internal/middleware"
	"github.com/vergon/rgr-api/internal/utils"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth      *handler.AuthHandler
	Companies *handler.CompanyHandler
	Persons   *handler.PersonHandler
	Users     *handler.UserHandler
	Audits    *handler.AuditHandler
	Health    *handler.HealthHandler

	Service   *auth.Service
	Gate      *auth.Gate
	AuditSink middleware.AuditSink

	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// Register mounts every route. Auth endpoints sit behind the rate
// limiter; everything under /api except the auth group requires a valid
// access token, and each resource group layers its own permission checks
// and audit recording on top.
func Register(e *echo.Echo, d Deps) {
	e.GET("/health", d.Health.Check)
	e.GET("/api", index, middleware.OptionalAuthenticate(d.Service))

	// Token lifecycle. Login and refresh are the brute-force surface, so
	// the whole group is rate limited.
	authGroup := e.Group("/api/auth", middleware.RateLimit(d.RateLimit, d.Redis))
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)
	authGroup.GET("/verify", d.Auth.Verify)
	authGroup.POST("/logout", d.Auth.Logout)

	api := e.Group("/api", middleware.Authenticate(d.Service))

	companies := api.Group("/companies", middleware.Audit(d.AuditSink, "companies"))
	companies.GET("", d.Companies.List, middleware.RequirePermission(d.Gate, "companies", "read"))
	companies.GET("/:id", d.Companies.Get, middleware.RequirePermission(d.Gate, "companies", "read"))
	companies.POST("", d.Companies.Create, middleware.RequirePermission(d.Gate, "companies", "create"))
	companies.PUT("/:id", d.Companies.Update, middleware.RequirePermission(d.Gate, "companies", "update"))
	companies.DELETE("/:id", d.Companies.Delete, middleware.RequirePermission(d.Gate, "companies", "delete"))
	companies.PATCH("/:id/activate", d.Companies.Activate, middleware.RequirePermission(d.Gate, "companies", "update"))
	companies.PATCH("/:id/deactivate", d.Companies.Deactivate, middleware.RequirePermission(d.Gate, "companies", "update"))

	persons := api.Group("/persons", middleware.Audit(d.AuditSink, "persons"))
	persons.GET("", d.Persons.List, middleware.RequirePermission(d.Gate, "persons", "read"))
	persons.GET("/search", d.Persons.Search, middleware.RequirePermission(d.Gate, "persons", "read"))
	persons.GET("/:id", d.Persons.Get, middleware.RequirePermission(d.Gate, "persons", "read"))
	persons.POST("", d.Persons.Create, middleware.RequirePermission(d.Gate, "persons", "create"))
	persons.PUT("/:id", d.Persons.Update, middleware.RequirePermission(d.Gate, "persons", "update"))
	persons.DELETE("/:id", d.Persons.Delete, middleware.RequirePermission(d.Gate, "persons", "delete"))
	persons.PATCH("/:id/activate", d.Persons.Activate, middleware.RequirePermission(d.Gate, "persons", "update"))
	persons.PATCH("/:id/deactivate", d.Persons.Deactivate, middleware.RequirePermission(d.Gate, "persons", "update"))

	users := api.Group("/users", middleware.Audit(d.AuditSink, "users"))
	users.GET("/me", d.Users.Me)
	users.GET("", d.Users.List, middleware.RequirePermission(d.Gate, "users", "read"))
	users.GET("/:login", d.Users.Get, middleware.RequirePermission(d.Gate, "users", "read"))
	users.POST("", d.Users.Create, middleware.RequirePermission(d.Gate, "users", "create"))
	users.PUT("/:login", d.Users.Update, middleware.RequirePermission(d.Gate, "users", "update"))
	users.DELETE("/:login", d.Users.Delete, middleware.RequirePermission(d.Gate, "users", "delete"))

	api.GET("/audit", d.Audits.Recent)
}

// index lists the top-level endpoints so a bare GET /api is useful. When
// the caller sent a valid token the response also names them.
func index(c echo.Context) error {
	data := map[string]any{
		"name":    "rgr-api",
		"version": "1.0.0",
		"endpoints": []string{
			"POST /api/auth/login",
			"POST /api/auth/refresh",
			"GET /api/auth/verify",
			"POST /api/auth/logout",
			"GET /api/companies",
			"GET /api/persons",
			"GET /api/users",
			"GET /api/users/me",
			"GET /api/audit",
			"GET /health",
		},
	}
	if id, ok := middleware.CurrentIdentity(c); ok {
		data["user"] = map[string]any{"login": id.Login, "tenantId": id.TenantID}
	}
	return c.JSON(http.StatusOK, utils.OK("RGR API", data))
}
