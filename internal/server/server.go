package server

import (
	"context"
	"errors"
	"time"

	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Customers *services.CustomerService
	Orders    *services.OrderService
}

// HealthCheck checks one dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Options tune the app built by New.
type Options struct {
	// RequestLog enables the per-request access log.
	RequestLog bool
	// Checks are reported by /health under their map key.
	Checks map[string]HealthCheck
}

// New builds the Fiber app with every route registered.
func New(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "inventory",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", healthHandler(opts.Checks))

	apiV1 := app.Group("/api/v1")

	// Auth routes are registered before the protected group so that login
	// and registration stay public.
	authRequired := middleware.AuthRequired(svc.Auth)
	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(apiV1, authRequired)

	protectedRoutes := apiV1.Group("", authRequired)
	handlers.NewProductHandler(svc.Products).RegisterRoutes(protectedRoutes)
	handlers.NewCustomerHandler(svc.Customers).RegisterRoutes(protectedRoutes)
	handlers.NewOrderHandler(svc.Orders).RegisterRoutes(protectedRoutes)

	return app
}

func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		results := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = fiber.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		state := "healthy"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status": state,
			"time":   time.Now().Format(time.RFC3339),
			"checks": results,
		})
	}
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes or recovered panics, in the same JSON shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{
		"message": statusMessage(code),
		"error":   err.Error(),
	})
}

func statusMessage(code int) string {
	if msg := utils.StatusMessage(code); msg != "" {
		return msg
	}
	return "Error"
}
