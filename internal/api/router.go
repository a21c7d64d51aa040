package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noticeboard/notice-board-api/internal/api/handler"
	"github.com/noticeboard/notice-board-api/internal/api/middleware"
	"github.com/noticeboard/notice-board-api/internal/core/service"
	"github.com/noticeboard/notice-board-api/internal/infrastructure/config"
	mongostore "github.com/noticeboard/notice-board-api/internal/infrastructure/db/mongo"
	redisstore "github.com/noticeboard/notice-board-api/internal/infrastructure/db/redis"
	"github.com/noticeboard/notice-board-api/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil; the stats cache is then skipped and every stats read hits
// the store.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("noticeboard"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	broadcastRepo := mongostore.NewBroadcastRepository(db)

	var statsCache service.StatsCache
	if rdb != nil {
		statsCache = redisstore.NewStatsCache(rdb)
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	broadcastService := service.NewBroadcastService(broadcastRepo, statsCache, log)

	authHandler := handler.NewAuthHandler(authService)
	broadcastHandler := handler.NewBroadcastHandler(broadcastService)
	authGuard := middleware.Auth(authService)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, authGuard)
	auth.PUT("/profile", authHandler.UpdateProfile, authGuard)

	// --- Broadcast routes: reads are public, writes sit behind the guard ---
	broadcasts := e.Group("/api/broadcasts")
	broadcasts.GET("", broadcastHandler.List)
	broadcasts.GET("/stats/summary", broadcastHandler.Stats)
	broadcasts.GET("/:id", broadcastHandler.Get)
	broadcasts.POST("", broadcastHandler.Create, authGuard)
	broadcasts.PUT("/:id", broadcastHandler.Update, authGuard)
	broadcasts.DELETE("/:id", broadcastHandler.Delete, authGuard)

	// --- Ops surface ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
