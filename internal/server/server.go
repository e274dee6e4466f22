package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"crimson-crm-be/internal/bootstrap"
	"crimson-crm-be/internal/config"
	"crimson-crm-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	// Frontend bundle, with index.html served for client-side routes
	app.Static("/", cfg.App.StaticDir)
	app.Use(spaFallback(cfg.App.StaticDir))

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.BioController.RegisterRoutes(api)
	c.ProfileController.RegisterRoutes(api)
}

func spaFallback(staticDir string) fiber.Handler {
	index := filepath.Join(staticDir, "index.html")
	return func(ctx *fiber.Ctx) error {
		if ctx.Method() != fiber.MethodGet || strings.HasPrefix(ctx.Path(), "/api") {
			return fiber.ErrNotFound
		}
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return ctx.SendFile(index)
	}
}
