package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Reportes-api/docs"
	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
	"github.com/jhoicas/Reportes-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Reportes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Reportes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Reportes-api/internal/interfaces/http"
	"github.com/jhoicas/Reportes-api/internal/scheduler"
	"github.com/jhoicas/Reportes-api/pkg/config"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	loc, err := cfg.Reports.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de reportes")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Caché de reportes: Redis si está configurado; si no, o si no responde, sin caché.
	var reportCache reports.ReportCache = cache.NoopReportCache{}
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisReportCache(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, reportes sin caché")
		} else {
			defer redisCache.Close()
			reportCache = redisCache
		}
	}

	reportUC := reports.NewReportUseCase(
		postgres.NewReportRepository(pool),
		reportCache,
		infrapdf.NewMarotoReportGenerator(cfg.App.Name),
		log,
		reports.Config{
			Location:  loc,
			CacheTTL:  cfg.Reports.CacheTTL(),
			Finance:   reports.FinancialPolicyFromConfig(cfg.Reports),
			Inventory: report.DefaultInventoryPolicy(),

			CustomerHistoryMonths: cfg.Reports.CustomerHistoryMonths,
		},
	)

	warmer := scheduler.NewReportWarmer(reportUC, cfg.Reports.WarmerCron, loc, log)
	if err := warmer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("precálculo de reportes")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Reportes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReportUC:  reportUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Logger:    log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
