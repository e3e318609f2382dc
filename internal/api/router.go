package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gemquest/identity-api/internal/api/handler"
	"github.com/gemquest/identity-api/internal/api/middleware"
	"github.com/gemquest/identity-api/internal/core/domain"
	"github.com/gemquest/identity-api/internal/core/ports"
	"github.com/gemquest/identity-api/internal/core/service"
	mongodb "github.com/gemquest/identity-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/gemquest/identity-api/internal/infrastructure/db/redis"
)

// RouterConfig carries the dependencies and knobs the router needs.
type RouterConfig struct {
	Mongo     *mongo.Database
	Redis     *redis.Client // optional; enables reset throttling when set
	Mail      ports.MailDispatcher
	JWTSecret string
	JWTTTL    time.Duration
	ResetTTL  time.Duration
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(cfg.Mongo)

	var throttle ports.ResetThrottle
	if cfg.Redis != nil {
		throttle = redisinfra.NewResetThrottle(cfg.Redis, 0)
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	resetService := service.NewPasswordResetService(userRepo, cfg.Mail, throttle, cfg.ResetTTL, cfg.Log)

	authHandler := handler.NewAuthHandler(authService)
	passwordHandler := handler.NewPasswordHandler(resetService)
	profileHandler := handler.NewProfileHandler()

	authenticated := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/request-password-reset", passwordHandler.RequestReset)
	e.POST("/set-password", passwordHandler.SetPassword)

	// --- Protected routes ---
	e.GET("/me", profileHandler.Me, authenticated)
	admin := e.Group("/admin", authenticated, middleware.Authorize(middleware.PermissionOptions{
		Roles:       []string{domain.RoleAdmin},
		Permissions: []domain.Permission{domain.PermissionManageUsers},
	}))
	admin.GET("/me", profileHandler.Me)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)         // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
