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

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		AppName: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("backend", cfg.Inventory.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner   inventory.TxRunner
		stockRepo  repository.StockRecordRepository
		ledgerRepo repository.LedgerRepository
	)
	switch cfg.Inventory.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		txRunner = memory.NewTxRunner(store)
		stockRepo = store.StockRecords()
		ledgerRepo = store.Ledger()
		log.Warn().Msg("backend en memoria: el stock se pierde al reiniciar")
	default:
		if cfg.DB.MigrationsAuto {
			if err := runMigrations(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		stockRepo = postgres.NewStockRecordRepository(pool)
		ledgerRepo = postgres.NewLedgerRepository(pool)
	}

	// Claves de idempotencia: Redis si está configurado (compartido entre instancias), si no en memoria.
	var idem interface {
		httpRouter.IdempotencyStore
		Close() error
	}
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		idem = redisStore
	} else {
		idem = cache.NewMemoryIdempotencyStore(time.Minute)
	}
	defer idem.Close()

	mutationUC := inventory.NewStockMutationUseCase(txRunner, inventory.MutationConfig{
		DefaultCurrency: cfg.Inventory.DefaultCurrency,
		InstanceID:      cfg.App.InstanceID,
	}, log.Zerolog())
	queryUC := inventory.NewStockQueryUseCase(stockRepo, ledgerRepo, inventory.QueryConfig{
		LowStockLimit: cfg.Inventory.LowStockLimit,
	})

	// PDF: kardex por producto
	reportUC := inventory.NewMovementReportUseCase(queryUC, infrapdf.NewKardexPDFGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "backend": cfg.Inventory.Backend})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Mutation:       mutationUC,
		Query:          queryUC,
		Report:         reportUC,
		Idempotency:    idem,
		IdempotencyTTL: cfg.Idempotency.TTL,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log.Zerolog(),
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

	log.Info().Msg("aplicación detenida")
}

func runMigrations(databaseURL string, log *logger.Logger) error {
	m, err := postgres.NewMigrator(databaseURL, log.Zerolog())
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
