package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/weatherpi/internal/display"
	"github.com/i474232898/weatherpi/internal/leds"
	"github.com/i474232898/weatherpi/internal/metrics"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "weatherpi"

// configSaver is implemented by display providers that can persist edits.
type configSaver interface {
	Save(ctx context.Context, doc display.Document) error
}

// NewApp creates the Fiber app with the shared error handler and middleware.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. ledState may be nil when
// no memory driver is configured.
func RegisterRoutes(app *fiber.App, config display.Provider, ledState *leds.MemoryDriver) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": ServiceName,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/config", func(c *fiber.Ctx) error {
		doc, err := config.Load(c.UserContext())
		if err != nil {
			slog.Warn("display config unavailable", "error", err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "display config unavailable")
		}
		return c.JSON(doc)
	})

	v1.Put("/config", func(c *fiber.Ctx) error {
		saver, ok := config.(configSaver)
		if !ok {
			return fiber.NewError(fiber.StatusMethodNotAllowed, "display config is read-only")
		}

		doc, err := display.Parse(c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := saver.Save(c.UserContext(), doc); err != nil {
			slog.Error("failed to save display config", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save display config")
		}

		slog.Info("display config updated",
			"latitude", doc.Latitude,
			"longitude", doc.Longitude,
			"interval_minutes", doc.ForecastIntervalMinutes,
			"colors", len(doc.Colors),
		)
		return c.JSON(doc)
	})

	v1.Get("/leds", func(c *fiber.Ctx) error {
		if ledState == nil {
			return fiber.NewError(fiber.StatusNotFound, "no memory led driver configured")
		}
		return c.JSON(fiber.Map{
			"frames": ledState.Frames(),
			"leds":   ledState.Snapshot(),
		})
	})
}
