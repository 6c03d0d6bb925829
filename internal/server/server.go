// Package server contains the HTTP handlers for the social.vim API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "socialvim/docs" // swagger docs
	"socialvim/internal/cache"
	"socialvim/internal/config"
	"socialvim/internal/database"
	"socialvim/internal/featureflags"
	"socialvim/internal/middleware"
	"socialvim/internal/models"
	"socialvim/internal/repository"
	"socialvim/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"
	"gorm.io/gorm"
)

const (
	serviceName    = "social.vim API"
	serviceVersion = "1.0.0"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config              *config.Config
	db                  *gorm.DB
	redis               *redis.Client
	app                 *fiber.App
	promMiddleware      *fiberprometheus.FiberPrometheus
	featureFlags        *featureflags.Manager
	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	chatService         *service.ChatService
	notificationService *service.NotificationService
	settingsService     *service.SettingsService
}

// NewServer connects to the database and Redis and creates a server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// performs explicit seeding. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	users := service.NewUserService(userRepo)

	return &Server{
		config:              cfg,
		db:                  db,
		redis:               redisClient,
		promMiddleware:      middleware.InitMetrics("socialvim-api"),
		featureFlags:        featureflags.NewManager(cfg.FeatureFlags),
		userService:         users,
		postService:         service.NewPostService(users, postRepo),
		commentService:      service.NewCommentService(users, commentRepo),
		chatService:         service.NewChatService(users, chatRepo),
		notificationService: service.NewNotificationService(users, notificationRepo),
		settingsService:     service.NewSettingsService(users, settingsRepo),
	}, nil
}

// NewApp builds a Fiber app with the middleware chain and every route.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   serviceName,
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))

	// Tracing has to run before the context middleware so the trace id is in locals.
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	maxRequests := s.config.RateLimitMax
	if maxRequests <= 0 {
		maxRequests = 100
	}
	window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Root)

	// Health checks
	app.Get("/health", s.HealthCheck)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "social.vim Metrics Dashboard",
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/me", s.GetMe)

	// Feeds
	app.Get("/timeline", s.GetTimeline)
	app.Get("/discover", s.GetDiscover)

	posts := app.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/repost", s.RepostPost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)

	conversations := app.Group("/conversations")
	conversations.Get("/", s.GetConversations)
	conversations.Get("/:id/messages", s.GetMessages)
	conversations.Post("/:id/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	app.Post("/dm", s.OpenDM)

	notifications := app.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Post("/:id/read", s.MarkNotificationRead)

	app.Get("/settings", s.GetSettings)
	app.Put("/settings", s.UpdateSettings)

	admin := app.Group("/admin")
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/seed", middleware.RateLimitWithPolicy(s.redis, 5, time.Minute, middleware.FailOpen, "admin_seed"), s.SeedDatabase)
}

// Root handles GET /
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (s *Server) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"version": serviceVersion,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles GET /health
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": serviceName,
	})
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and Redis concurrently. Redis only backs
// rate limiting, so an absent client does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	redisStatus := "unavailable"

	var wg conc.WaitGroup
	wg.Go(func() {
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	})
	wg.Go(func() {
		if s.redis == nil {
			return
		}
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
			return
		}
		redisStatus = "healthy"
	})
	wg.Wait()

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": serviceVersion,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port. It blocks until
// the listener stops.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
