package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/AlmacenPos-api/internal/application/auth"
	"github.com/jhoicas/AlmacenPos-api/internal/application/possync"
	"github.com/jhoicas/AlmacenPos-api/internal/application/purchasing"
	"github.com/jhoicas/AlmacenPos-api/internal/application/receiving"
	"github.com/jhoicas/AlmacenPos-api/internal/application/serial"
	"github.com/jhoicas/AlmacenPos-api/internal/application/stock"
	"github.com/jhoicas/AlmacenPos-api/internal/application/usecase"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.UseCase
	ProductUC    *usecase.ProductUseCase
	WarehouseUC  *usecase.WarehouseUseCase
	SupplierUC   *usecase.SupplierUseCase
	SerialUC     *serial.UseCase
	StockUC      *stock.UseCase
	SyncUC       *possync.UseCase
	PurchasingUC *purchasing.UseCase
	ReceivingUC  *receiving.UseCase
	OrderPDF     OrderPDFGenerator
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: products, warehouses, suppliers (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)

	// Números de serie (protegido; borrado solo admin)
	serials := protected.Group("/serials")
	serialHandler := NewSerialHandler(deps.SerialUC)
	serials.Post("/generate", serialHandler.Generate)
	serials.Get("/validate/:code", serialHandler.Validate)
	serials.Get("/stats", serialHandler.Stats)
	serials.Patch("/status", serialHandler.BulkStatus)
	serials.Post("/transfer", serialHandler.Transfer)
	serials.Get("/", serialHandler.List)
	serials.Get("/:id", serialHandler.GetByID)
	serials.Delete("/", RequireRole(entity.RoleAdmin), serialHandler.Delete)

	// Consultas de stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Get("/levels", stockHandler.Levels)
	stockGroup.Get("/low", stockHandler.LowStock)
	stockGroup.Get("/out", stockHandler.OutOfStock)
	stockGroup.Get("/warehouses/:id/summary", stockHandler.WarehouseSummary)

	// Sincronización POS y entregas (protegido; solo admin/manager/bodeguero)
	syncHandler := NewSyncHandler(deps.SyncUC)
	syncGroup := protected.Group("/sync", RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleBodeguero))
	syncGroup.Post("/inventory", syncHandler.SyncInventory)
	syncGroup.Get("/runs", syncHandler.ListRuns)
	syncGroup.Post("/conflicts/resolve", syncHandler.ResolveConflicts)
	syncGroup.Post("/deliveries", syncHandler.Delivery)

	// Alertas de stock (protegido)
	alerts := protected.Group("/alerts")
	alerts.Get("/", syncHandler.ListAlerts)
	alerts.Post("/generate", syncHandler.GenerateAlerts)
	alerts.Post("/monitor", syncHandler.Monitor)
	alerts.Post("/process", RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleComprador), syncHandler.ProcessAlerts)

	// Órdenes de compra automáticas (protegido; compras las gestiona comprador/manager/admin)
	purchaseHandler := NewPurchaseHandler(deps.PurchasingUC, deps.OrderPDF)
	orders := protected.Group("/purchase-orders", RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleComprador))
	orders.Get("/", purchaseHandler.List)
	orders.Get("/:id", purchaseHandler.GetByID)
	orders.Get("/:id/pdf", purchaseHandler.PDF)
	orders.Patch("/:id/status", purchaseHandler.UpdateStatus)
	protected.Get("/products/:product_id/optimal-supplier", purchaseHandler.OptimalSupplier)

	// Recepción de mercancía (protegido)
	receivingGroup := protected.Group("/receiving")
	receivingHandler := NewReceivingHandler(deps.ReceivingUC)
	receivingGroup.Post("/", receivingHandler.Receive)
	receivingGroup.Get("/", receivingHandler.List)
	receivingGroup.Get("/:id", receivingHandler.GetByID)
}
