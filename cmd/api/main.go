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

	"github.com/smartstock/smartstock-api/internal/application/ledger"
	"github.com/smartstock/smartstock-api/internal/application/lowstock"
	"github.com/smartstock/smartstock-api/internal/application/usecase"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
	"github.com/smartstock/smartstock-api/internal/infrastructure/memory"
	"github.com/smartstock/smartstock-api/internal/infrastructure/postgres"
	httpRouter "github.com/smartstock/smartstock-api/internal/interfaces/http"
	"github.com/smartstock/smartstock-api/pkg/config"
	"github.com/smartstock/smartstock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacenamiento: PostgreSQL por defecto; memory para demo sin base.
	// El handle se abre aquí y se cierra en el shutdown, sin singletons.
	var (
		productRepo  repository.ProductRepository
		movementRepo repository.StockMovementRepository
		categoryRepo repository.CategoryRepository
		supplierRepo repository.SupplierRepository
		txRunner     ledger.TxRunner
	)
	if cfg.App.Storage == "memory" {
		store := memory.NewStore()
		productRepo = memory.NewProductRepository(store)
		movementRepo = memory.NewStockMovementRepository(store)
		categoryRepo = memory.NewCategoryRepository(store)
		supplierRepo = memory.NewSupplierRepository(store)
		txRunner = memory.NewTxRunner(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		productRepo = postgres.NewProductRepository(pool)
		movementRepo = postgres.NewStockMovementRepository(pool)
		categoryRepo = postgres.NewCategoryRepository(pool)
		supplierRepo = postgres.NewSupplierRepository(pool)
		txRunner = postgres.NewTxRunner(pool, time.Duration(cfg.Ledger.LockTimeoutMS)*time.Millisecond)
	}

	applyUC := ledger.NewApplyMovementUseCase(txRunner)
	historyUC := ledger.NewHistoryUseCase(movementRepo)
	lowStockUC := lowstock.NewMonitorUseCase(productRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)

	httpRouter.RegisterMetrics()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SmartStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", httpRouter.MetricsHandler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC: categoryUC,
		SupplierUC: supplierUC,
		ProductUC:  productUC,
		ApplyUC:    applyUC,
		HistoryUC:  historyUC,
		LowStockUC: lowStockUC,
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
