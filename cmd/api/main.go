// @title        Stock Import API
// @version      1.0
// @description  Importación masiva de inventario por CSV y libro de movimientos de stock.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in           header
// @name         Authorization
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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/stock-import/docs"
	"github.com/jhoicas/stock-import/internal/application/inventory"
	inframetrics "github.com/jhoicas/stock-import/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-import/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-import/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-import/internal/infrastructure/reporting"
	infraxlsx "github.com/jhoicas/stock-import/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/stock-import/internal/interfaces/http"
	"github.com/jhoicas/stock-import/pkg/config"
	"github.com/jhoicas/stock-import/pkg/logger"
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
		Int("import_workers", cfg.Import.Workers).
		Msg("iniciando aplicación")

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// Reporters: log estructurado y, si está habilitado, Prometheus
	reporters := inventory.MultiReporter{reporting.NewLogReporter(log.With("reporter"))}
	var observer httpRouter.MovementObserver
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		importMetrics := inframetrics.NewImportMetrics(registry)
		reporters = append(reporters, importMetrics)
		observer = importMetrics
	}

	locks := inventory.NewKeyedMutex()
	importUC := inventory.NewImportUseCase(store, inventory.ImportConfig{
		Workers:         cfg.Import.Workers,
		RowTimeout:      cfg.Import.RowTimeout,
		DefaultLowStock: cfg.Import.DefaultLowStock,
	},
		inventory.WithLogger(log.With("import")),
		inventory.WithReporter(reporters),
		inventory.WithLocks(locks),
	)
	sessions := inventory.NewSessionStore(cfg.Import.SessionTTL)
	registerMovementUC := inventory.NewRegisterMovementUseCase(store, store, locks)
	exportUC := inventory.NewExportUseCase(store, infraxlsx.New())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Import.MaxUploadBytes + 64<<10, // margen para el sobre multipart
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 120, // commits grandes
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Import API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Import:           importUC,
		Sessions:         sessions,
		RegisterMovement: registerMovementUC,
		Export:           exportUC,
		Store:            store,
		Renderer:         infrapdf.NewReportGenerator(),
		SheetToCSV:       infraxlsx.ToCSV,
		Observer:         observer,
		MaxUploadBytes:   cfg.Import.MaxUploadBytes,
		JWTSecret:        cfg.JWT.Secret,
	})

	// Purga periódica de sesiones vencidas
	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-pruneCtx.Done():
				return
			case <-ticker.C:
				if n := sessions.Prune(); n > 0 {
					log.Debug().Int("sessions", n).Msg("sesiones vencidas purgadas")
				}
			}
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
