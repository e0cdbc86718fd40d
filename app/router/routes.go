// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/app/handlers"
	"github.com/amirphl/lead-connect/app/middleware"
	"github.com/amirphl/lead-connect/config"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth          handlers.AuthHandlerInterface
	CampaignAdmin handlers.CampaignAdminHandlerInterface
	Lead          handlers.LeadHandlerInterface
	Dashboard     *handlers.DashboardHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	server         config.ServerConfig
	metrics        config.MetricsConfig
	logger         *zap.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	serverCfg config.ServerConfig,
	metricsCfg config.MetricsConfig,
	logger *zap.Logger,
) Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FiberRouter{
		handlers:       h,
		authMiddleware: authMiddleware,
		server:         serverCfg,
		metrics:        metricsCfg,
		logger:         logger,
	}
	r.app = fiber.New(fiber.Config{
		AppName:      "Lead Connect API",
		ServerHeader: "lead-connect",
		ErrorHandler: r.errorHandler,
		BodyLimit:    serverCfg.BodyLimit,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	if r.metrics.Enabled {
		r.app.Get(r.metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many login attempts. Please try again later.",
				Error:   dto.ErrorDetail{Code: "RATE_LIMIT_EXCEEDED"},
			})
		},
	}))
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/logout", r.authMiddleware.Authenticate(), r.handlers.Auth.Logout)
	auth.Get("/me", r.authMiddleware.Authenticate(), r.handlers.Auth.Me)

	admin := api.Group("/admin", r.authMiddleware.Authenticate(), middleware.RequireRole(models.UserRoleAdmin))
	admin.Get("/dashboard", r.handlers.Dashboard.AdminDashboard)
	admin.Get("/campaigns/next-id", r.handlers.CampaignAdmin.NextCampaignID)
	admin.Get("/campaigns", r.handlers.CampaignAdmin.ListCampaigns)
	admin.Post("/campaigns", r.handlers.CampaignAdmin.CreateCampaign)
	admin.Get("/campaigns/:id", r.handlers.CampaignAdmin.GetCampaign)
	admin.Put("/campaigns/:id", r.handlers.CampaignAdmin.UpdateCampaign)
	admin.Delete("/campaigns/:id", r.handlers.CampaignAdmin.DeleteCampaign)

	ic := api.Group("/ic", r.authMiddleware.Authenticate(), middleware.RequireRole(models.UserRoleIC))
	ic.Get("/dashboard", r.handlers.Dashboard.ICDashboard)
	ic.Get("/campaigns", r.handlers.Lead.MyCampaigns)
	ic.Get("/campaigns/:id/leads", r.handlers.Lead.ListMyLeads)
	ic.Put("/campaigns/:id/leads", r.handlers.Lead.SaveContactEdits)

	r.app.Use(r.notFoundHandler)

	r.logger.Info("Routes configured")
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: generateRequestID,
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Error("Panic while serving request",
				zap.Any("panic", e),
				zap.Any("request_id", c.Locals("requestid")),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	origins := r.server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        utils.CORSMaxAge,
	}))

	if r.metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(r.accessLog)
}

// accessLog writes one structured line per request, skipping health checks
func (r *FiberRouter) accessLog(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if c.Path() == "/api/v1/health" || c.Path() == r.metrics.Path {
		return err
	}
	r.logger.Info("request",
		zap.Any("request_id", c.Locals("requestid")),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
		zap.String("ip", c.IP()),
	)
	return err
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber app
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "healthy",
			"timestamp": utils.UTCNow().Format(time.RFC3339),
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// errorHandler turns errors escaping the handlers into the standard response
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		r.logger.Error("Unhandled request error", zap.Int("status", code), zap.Error(err))
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: "REQUEST_FAILED",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
