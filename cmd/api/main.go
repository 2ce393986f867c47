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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/application/auth"
	"github.com/jhoicas/AlmacenPos-api/internal/application/possync"
	"github.com/jhoicas/AlmacenPos-api/internal/application/purchasing"
	"github.com/jhoicas/AlmacenPos-api/internal/application/receiving"
	"github.com/jhoicas/AlmacenPos-api/internal/application/serial"
	"github.com/jhoicas/AlmacenPos-api/internal/application/stock"
	"github.com/jhoicas/AlmacenPos-api/internal/application/usecase"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	infrapdf "github.com/jhoicas/AlmacenPos-api/internal/infrastructure/pdf"
	infrapos "github.com/jhoicas/AlmacenPos-api/internal/infrastructure/pos"
	"github.com/jhoicas/AlmacenPos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/AlmacenPos-api/internal/interfaces/http"
	"github.com/jhoicas/AlmacenPos-api/pkg/config"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
	"github.com/jhoicas/AlmacenPos-api/pkg/resilience"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	serialRepo := postgres.NewSerialNumberRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	syncLogRepo := postgres.NewSyncLogRepository(pool)
	conflictRepo := postgres.NewConflictRepository(pool)
	receiveRepo := postgres.NewReceiveLogRepository(pool)
	receiveTx := postgres.NewTxRunner(pool)
	purchaseTx := postgres.NewPurchaseTxRunner(pool)

	// Ejecutor de resiliencia: la lectura del POS es una operación externa con
	// reintentos + circuit breaker; los fallos de alertas tienen fallback nulo
	// (el monitor reintenta en el siguiente ciclo).
	executor := resilience.NewExecutor(log)
	executor.RegisterExternal(possync.OpFetchPOSInventory,
		resilience.RetryConfig{
			MaxAttempts:    3,
			BaseDelay:      500 * time.Millisecond,
			MaxDelay:       10 * time.Second,
			Multiplier:     2,
			RetryableCodes: []string{domain.CodePOSUnavailable},
		},
		resilience.DefaultBreakerConfig(),
	)
	executor.RegisterStrategy(domain.CodeStockAlertProcessing, resilience.RecoveryStrategy{
		Name:       "skip-alert-cycle",
		CanRecover: func(err error) bool { return true },
		Fallback:   func(ctx context.Context) error { return nil },
	})

	// Cliente POS: HTTP si hay BaseURL, en memoria para desarrollo.
	var posClient possync.POSClient
	if cfg.POS.BaseURL != "" {
		posClient = infrapos.NewHTTPClient(cfg.POS)
	} else {
		posClient = infrapos.NewMemoryClient()
	}

	// Casos de uso
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(productRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	serialUC := serial.NewUseCase(serialRepo, movementRepo, productRepo, warehouseRepo, log)
	stockUC := stock.NewUseCase(levelRepo, warehouseRepo)
	receivingUC := receiving.NewUseCase(receiveTx, serialRepo, receiveRepo, productRepo, warehouseRepo, log)

	purchasingCfg := purchasing.DefaultConfig()
	if cfg.Purchasing.TaxRate > 0 {
		purchasingCfg.TaxRate = decimal.NewFromFloat(cfg.Purchasing.TaxRate)
	}
	purchasingUC := purchasing.NewUseCase(purchaseTx, orderRepo, alertRepo, supplierRepo, productRepo, purchasingCfg, log)

	syncUC := possync.NewUseCase(
		posClient, executor,
		syncLogRepo, conflictRepo, alertRepo, serialRepo, productRepo,
		purchasingUC,
		possync.Config{
			DefaultStrategy:  cfg.Sync.DefaultStrategy,
			AutoCreateOrders: cfg.Sync.AutoCreateOrders,
		},
		log,
	)

	// Monitor periódico de niveles de stock (0 = solo manual vía API)
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	if cfg.Sync.MonitorInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Sync.MonitorInterval)
			defer ticker.Stop()
			for {
				select {
				case <-monitorCtx.Done():
					return
				case <-ticker.C:
					if err := syncUC.MonitorInventoryLevels(monitorCtx); err != nil {
						log.Error().Err(err).Msg("monitor de inventario falló")
					}
				}
			}
		}()
	}

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "AlmacenPos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    productUC,
		WarehouseUC:  warehouseUC,
		SupplierUC:   supplierUC,
		SerialUC:     serialUC,
		StockUC:      stockUC,
		SyncUC:       syncUC,
		PurchasingUC: purchasingUC,
		ReceivingUC:  receivingUC,
		OrderPDF:     pdfGenerator,
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
	stopMonitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
