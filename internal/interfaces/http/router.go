package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/jhoicas/bebidas-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine *inventory.Engine
	Query  *inventory.QueryService
	Log    *logger.Logger
	// Middlewares extra antes de las rutas (p. ej. métricas).
	Middlewares []fiber.Handler
}

// NewApp crea la app Fiber con el manejador de errores JSON y los middlewares comunes.
func NewApp(name string, log *logger.Logger, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(RequestLogger(log))
	for _, h := range extra {
		app.Use(h)
	}
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	for _, m := range deps.Middlewares {
		app.Use(m)
	}

	h := NewBeverageHandler(deps.Engine, deps.Query, deps.Log)
	beverages := app.Group("/api/beverages")

	beverages.Get("/", h.List)
	beverages.Post("/stock-in", h.StockIn)
	beverages.Post("/stock-out", h.StockOut)
	beverages.Post("/quarantine-expired", h.QuarantineExpired)

	// Rutas fijas antes de /:id
	beverages.Get("/expired", h.Expired)
	beverages.Get("/expiring-soon", h.ExpiringSoon)
	beverages.Get("/statistics", h.Statistics)
	beverages.Get("/quarantined", h.Quarantined)
	beverages.Get("/disposed", h.Disposed)

	beverages.Get("/:id", h.GetByID)
	beverages.Put("/:id", h.Update)
	beverages.Delete("/:id", h.Delete)
	beverages.Post("/:id/dispose", h.Dispose)
}
