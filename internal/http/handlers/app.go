package handlers

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"stockroom/internal/config"
	applog "stockroom/internal/log"
)

//go:embed templates/*.html
var templateFS embed.FS

func isAPI(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") }

// NewApp builds the fiber app with middleware and all routes.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	sub, _ := fs.Sub(templateFS, "templates")
	engine := html.NewFileSystem(http.FS(sub), ".html")

	app := fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= 500 {
				applog.Error(c, "server.error", err, nil)
			}
			msg := "Something went wrong. Please try again."
			if code < 500 && fe != nil {
				msg = fe.Message
			}
			if isAPI(c) {
				return c.Status(code).JSON(fiber.Map{"error": msg})
			}
			if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
				return c.Status(code).SendString(msg)
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: zap.NewStdLog(zap.L().Named("access")).Writer(),
	}))
	app.Use(helmet.New())
	app.Use(deps.Metrics.Middleware())

	perMin := cfg.RateLimitPerMin
	if perMin <= 0 {
		perMin = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMin,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	writeAuth := RequireAdminToken(cfg.AdminTokenHash)

	api := app.Group("/api/v1")
	api.Get("/inventory", deps.InventoryHandler.List)
	api.Get("/inventory/:productId", deps.InventoryHandler.Get)
	api.Post("/inventory/:productId", writeAuth, deps.InventoryHandler.Update)
	api.Put("/inventory/:productId", writeAuth, deps.InventoryHandler.Update)

	admin := app.Group("/admin", writeAuth)
	admin.Get("/inventory", deps.AdminHandler.Inventory)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))

	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
