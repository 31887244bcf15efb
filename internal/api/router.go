package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/litescript/ls-houses/internal/version"
)

// NewApp creates the Fiber application with all routes registered.
func NewApp(deps *Dependencies) *fiber.App {
	cfg := fiber.Config{
		AppName:               "ls-houses " + version.Version,
		DisableStartupMessage: true,
	}
	if deps.Server.ReadTimeout > 0 {
		cfg.ReadTimeout = time.Duration(deps.Server.ReadTimeout) * time.Second
	}
	if deps.Server.WriteTimeout > 0 {
		cfg.WriteTimeout = time.Duration(deps.Server.WriteTimeout) * time.Second
	}

	app := fiber.New(cfg)
	SetupRoutes(app, deps)
	return app
}

// SetupRoutes registers the REST routes and the metrics endpoint.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(MetricsMiddleware())
	app.Get("/metrics", MetricsHandler())

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(accessLog(deps))

	app.Get("/v1/health", HealthHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/systems", SystemsHandler(deps))
	v1.Get("/houses", HousesHandler(deps))
	v1.Get("/position", PositionHandler(deps))
	v1.Get("/events", EventsHandler(deps))
	v1.Post("/charts", CreateChartHandler(deps))
	v1.Get("/charts", ListChartsHandler(deps))
	v1.Get("/charts/:id", GetChartHandler(deps))
	v1.Delete("/charts/:id", DeleteChartHandler(deps))
}

// accessLog writes one debug line per request.
func accessLog(deps *Dependencies) fiber.Handler {
	log := deps.logger()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug("%s %s -> %d (%v)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
