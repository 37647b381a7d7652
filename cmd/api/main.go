package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/jhoicas/bebidas-api/internal/domain/repository"
	"github.com/jhoicas/bebidas-api/internal/infrastructure/memory"
	"github.com/jhoicas/bebidas-api/internal/infrastructure/metrics"
	"github.com/jhoicas/bebidas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bebidas-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/bebidas-api/internal/interfaces/http"
	"github.com/jhoicas/bebidas-api/internal/interfaces/scheduler"
	"github.com/jhoicas/bebidas-api/pkg/clock"
	"github.com/jhoicas/bebidas-api/pkg/config"
	"github.com/jhoicas/bebidas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}
	clk := clock.NewSystem(loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		txRunner inventory.TxRunner
		reader   repository.BeverageReader
		pool     *pgxpool.Pool
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store := memory.NewStore(clk, memory.WithLockTimeout(cfg.DB.LockTimeout()))
		txRunner, reader = store, store
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			n, err := migrateOrClose(ctx, pool, postgres.Migrate)
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Int("applied", n).Msg("migraciones aplicadas")
		}
		txRunner = postgres.NewTxRunner(pool, clk, cfg.DB.LockTimeout())
		reader = postgres.NewBeverageRepository(pool, clk)
	}

	m := metrics.New(true)
	engine := inventory.NewEngine(txRunner, clk, log.Named("inventory"), m)
	query := inventory.NewQueryService(reader, clk)

	app := httpRouter.NewApp(cfg.App.Name, log, m.Middleware())

	if cfg.Swagger.Enabled {
		// Swagger UI: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Swagger.File,
			Path:     "docs",
			Title:    "Bebidas API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if pool != nil {
			pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(pingCtx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "service": cfg.App.Name})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine: engine,
		Query:  query,
		Log:    log,
	})

	if cfg.Scheduler.Enabled {
		redisClient, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			// Sin Redis el barrido sigue siendo seguro: es idempotente.
			log.Warn().Err(err).Msg("Redis no disponible, barrido sin coordinación")
		}
		if redisClient != nil {
			defer redisClient.Close()
		}
		host, _ := os.Hostname()
		sched := scheduler.New(engine, redislock.New(redisClient, host, 0), clk, scheduler.Config{
			Hour:     cfg.Scheduler.Hour,
			Minute:   cfg.Scheduler.Minute,
			Location: loc,
		}, log.Named("scheduler"))
		go sched.Start(ctx)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// migrateOrClose aplica las migraciones. Si fallan cierra el pool: log.Fatal sale sin ejecutar los defer.
func migrateOrClose(ctx context.Context, pool *pgxpool.Pool, migrate func(context.Context, *pgxpool.Pool) (int, error)) (int, error) {
	n, err := migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return 0, err
	}
	return n, nil
}
