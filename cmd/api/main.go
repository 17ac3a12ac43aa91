package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/hospitality-ops/internal/application/directory"
	"github.com/jhoicas/hospitality-ops/internal/application/events"
	"github.com/jhoicas/hospitality-ops/internal/application/extras"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/application/order"
	"github.com/jhoicas/hospitality-ops/internal/application/stats"
	"github.com/jhoicas/hospitality-ops/internal/application/transfer"
	"github.com/jhoicas/hospitality-ops/internal/domain/pricing"
	infrakafka "github.com/jhoicas/hospitality-ops/internal/infrastructure/kafka"
	"github.com/jhoicas/hospitality-ops/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/hospitality-ops/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/hospitality-ops/internal/interfaces/http"
	"github.com/jhoicas/hospitality-ops/pkg/config"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
	"github.com/jhoicas/hospitality-ops/pkg/observability"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas OTLP")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool, cfg.Engine.TxTimeout)
	stores := postgres.NewStores(pool)
	departmentRepo := postgres.NewDepartmentRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)

	// Redis es opcional: sin él no hay caché de scopes y el recálculo de stats solo se serializa dentro del proceso.
	var (
		scopeCache directory.ScopeCache
		locker     stats.Locker
	)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		scopeCache = infraredis.NewScopeCache(rdb, cfg.Redis.CacheTTL)
		locker = infraredis.NewLocker(redislock.New(rdb), cfg.Redis.LockRetryBackoff, cfg.Redis.LockRetries)
	}

	var publisher events.Publisher = events.Nop{}
	var kafkaPublisher *infrakafka.Publisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = infrakafka.NewPublisher(infrakafka.NewWriter(cfg.Kafka))
		publisher = kafkaPublisher
	}

	directoryUC := directory.NewUseCase(departmentRepo, scopeCache, log)
	statsUC := stats.NewUseCase(stores.Orders, departmentRepo, statsRepo, directoryUC, locker, cfg.Engine.StatsLockTTL, log)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, stores.Stock, stores.Movements, log)
	reservationUC := inventory.NewReservationUseCase(txRunner, log)
	extrasUC := extras.NewUseCase(txRunner, stores.Extras, log)
	orderUC := order.NewUseCase(order.Deps{
		TxRunner:  txRunner,
		Orders:    stores.Orders,
		Resolver:  directoryUC,
		Pricer:    pricing.FlatTax{RateBasisPoints: cfg.Engine.TaxRateBasisPoints},
		Stats:     statsUC,
		Publisher: publisher,
		Log:       log,
	})
	transferUC := transfer.NewUseCase(transfer.Deps{
		TxRunner:  txRunner,
		Transfers: stores.Transfers,
		Resolver:  directoryUC,
		Ledger:    ledgerUC,
		Extras:    extrasUC,
		Publisher: publisher,
		Retry: transfer.RetryPolicy{
			MaxAttempts: cfg.Engine.TransferMaxAttempts,
			Backoff:     cfg.Engine.TransferBackoff,
		},
		ResumeAfter: cfg.Engine.TransferResumeAfter,
		Log:         log,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 20,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Hospitality Ops API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orders:       orderUC,
		Transfers:    transferUC,
		Ledger:       ledgerUC,
		Reservations: reservationUC,
		Extras:       extrasUC,
		Directory:    directoryUC,
		Stats:        statsUC,
		JWTSecret:    cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Los recálculos de estadísticas en curso terminan antes de cerrar el pool.
	statsUC.Wait()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar productor Kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar trazas pendientes")
	}

	log.Info().Msg("aplicación detenida")
}
