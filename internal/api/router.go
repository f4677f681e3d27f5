package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sentra-id/identity-api/internal/api/handler"
	"github.com/sentra-id/identity-api/internal/api/middleware"
	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
	"github.com/sentra-id/identity-api/internal/core/service"
	"github.com/sentra-id/identity-api/internal/infrastructure/config"
	mongodb "github.com/sentra-id/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sentra-id/identity-api/internal/infrastructure/db/redis"
	"github.com/sentra-id/identity-api/internal/infrastructure/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when token revocation is disabled; the readiness probe
// and the revocation store both adapt to its absence.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))
	e.Use(middleware.APIKey(cfg.APIKey))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	assignmentRepo := mongodb.NewAssignmentRepository(db)

	signer := token.NewJWTSigner(cfg.JWT.Secret)

	var revoker ports.TokenRevoker
	if cfg.JWT.RevocationEnabled && rdb != nil {
		revoker = redisdb.NewRevocationStore(rdb)
	}

	policy := service.NewPasswordPolicy(cfg.Password.MinLength)
	authService := service.NewAuthService(userRepo, assignmentRepo, signer, revoker, policy, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	roleService := service.NewRoleService(roleRepo)
	rbacService := service.NewRBACService(userRepo, roleRepo, assignmentRepo)

	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(authService)
	roleHandler := handler.NewRoleHandler(roleService)
	userRoleHandler := handler.NewUserRoleHandler(rbacService)

	authenticated := middleware.Auth(signer)
	adminOnly := middleware.Guard(rbacService, domain.AdminRoleCode)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/password/change", authHandler.ChangePassword, authenticated)
	auth.GET("/profile", profileHandler.Get, authenticated)
	auth.PUT("/profile", profileHandler.Update, authenticated)

	// --- Role catalog (admin) ---
	roles := e.Group("/roles", authenticated, adminOnly)
	roles.GET("", roleHandler.List)
	roles.POST("", roleHandler.Create)
	roles.GET("/:id", roleHandler.Get)
	roles.PUT("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Deactivate)

	// --- User role assignments (admin) ---
	userRoles := e.Group("/users/:id/roles", authenticated, adminOnly)
	userRoles.GET("", userRoleHandler.List)
	userRoles.POST("", userRoleHandler.Assign)
	userRoles.DELETE("/:roleId", userRoleHandler.Revoke)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
