package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/todolist/todo-api/docs"
	"github.com/todolist/todo-api/internal/api/handler"
	"github.com/todolist/todo-api/internal/api/middleware"
	"github.com/todolist/todo-api/internal/core/ports"
	"github.com/todolist/todo-api/internal/core/service"
	mongorepo "github.com/todolist/todo-api/internal/infrastructure/db/mongo"
	redisstore "github.com/todolist/todo-api/internal/infrastructure/db/redis"
	"github.com/todolist/todo-api/internal/pkg/config"
	"github.com/todolist/todo-api/internal/pkg/password"
)

// Options holds everything NewRouter wires into the handlers.
type Options struct {
	DB     *mongo.Database
	Redis  *redis.Client // optional; nil disables Idempotency-Key support
	Config *config.Config
	Logger zerolog.Logger

	// Activity receives todo.created / todo.deleted records. Optional.
	Activity ports.ActivityRecorder
	// Hasher defaults to password.NewHasher(password.DefaultParams).
	Hasher *password.Hasher
	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	cfg := opts.Config
	log := opts.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "todo",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	var idem ports.IdempotencyStore
	if opts.Redis != nil {
		idem = redisstore.NewIdempotencyStore(opts.Redis, cfg.Redis.IdempotencyTTL)
	}
	todoRepo := mongorepo.NewTodoRepository(opts.DB)
	todoService := service.NewTodoService(todoRepo, idem, opts.Activity, log)
	todoHandler := handler.NewTodoHandler(todoService, log)

	// --- Todo routes ---
	todos := e.Group("/api/todos")
	todos.GET("", todoHandler.List)
	todos.POST("", todoHandler.Create)
	todos.DELETE("/:id", todoHandler.Delete)

	// --- Auth routes (only when a signing secret is configured) ---
	if cfg.Auth.JWTSecret != "" {
		hasher := opts.Hasher
		if hasher == nil {
			hasher = password.NewHasher(password.DefaultParams)
		}
		userRepo := mongorepo.NewUserRepository(opts.DB, hasher)
		authService := service.NewAuthService(userRepo, hasher, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
		authHandler := handler.NewAuthHandler(authService)

		auth := e.Group("/api/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authHandler.Me, middleware.Auth(cfg.Auth.JWTSecret))
	} else {
		log.Info().Msg("JWT_SECRET not set, account routes disabled")
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.DB, opts.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Warn().Err(v.Error)
			}
			// Set by middleware.Auth on authenticated routes.
			if id, _ := c.Get(middleware.ContextKeyUserID).(string); id != "" {
				ev = ev.Str("user_id", id)
			}
			if name, _ := c.Get(middleware.ContextKeyUsername).(string); name != "" {
				ev = ev.Str("username", name)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
