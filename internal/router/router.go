package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wrenhq/wren-social-api/internal/config"
	"github.com/wrenhq/wren-social-api/internal/handler"
	"github.com/wrenhq/wren-social-api/internal/middleware"
	"github.com/wrenhq/wren-social-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ConversationHandler *handler.ConversationHandler
	MessageHandler      *handler.MessageHandler
	ReactionHandler     *handler.ReactionHandler
	NotificationHandler *handler.NotificationHandler
	ActivityFeedHandler *handler.ActivityFeedHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	writeLimit := middleware.RateLimit("write", cfg.WriteRateLimit, cfg.WriteRateWindow)
	streamLimit := middleware.RateLimit("stream", cfg.StreamRateLimit, cfg.StreamRateWindow)

	if deps.ConversationHandler != nil {
		conversations := api.Group("/conversations", jwtMiddleware)
		conversations.Use(writeMethodsOnly(writeLimit))
		deps.ConversationHandler.Register(conversations)
	}

	if deps.MessageHandler != nil {
		messaging := api.Group("/", jwtMiddleware)
		messaging.Use(writeMethodsOnly(writeLimit))
		deps.MessageHandler.Register(messaging)
	}

	if deps.ReactionHandler != nil {
		reactions := api.Group("/reactions", jwtMiddleware)
		reactions.Use(writeMethodsOnly(writeLimit))
		deps.ReactionHandler.Register(reactions)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		notifications.Use("/stream", streamLimit)
		deps.NotificationHandler.Register(notifications)
		deps.NotificationHandler.RegisterAdmin(notifications, middleware.RequireRole("admin"))
	}

	if deps.ActivityFeedHandler != nil {
		activities := api.Group("/activities", jwtMiddleware)
		activities.Use(writeMethodsOnly(writeLimit))
		deps.ActivityFeedHandler.Register(activities)
	}
}

// writeMethodsOnly applies the wrapped limiter to mutating requests and lets
// reads through untouched.
func writeMethodsOnly(limiter fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
			return limiter(c)
		default:
			return c.Next()
		}
	}
}
