package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *inventory.StockLedgerUseCase
	StockQuery  *inventory.StockQueryUseCase
	ReportUC    *inventory.ReportUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	CategoryUC  *usecase.CategoryUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
//   - lectura: cualquier rol
//   - movimientos y catálogo: admin o bodeguero
//   - recompute, reconcile y bajas: admin
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admins := RequireRole(jwt.RoleAdmin)

	// Inventory: motor de reconciliación y fachada de consultas
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.StockQuery)
	inv.Post("/movements", writers, inventoryHandler.RecordMovement)
	inv.Get("/movements", readers, inventoryHandler.ListMovements)
	inv.Get("/balance", readers, inventoryHandler.GetBalance)
	inv.Get("/total-stock", readers, inventoryHandler.GetTotalStock)
	inv.Get("/breakdown", readers, inventoryHandler.GetBreakdown)
	inv.Post("/recompute", admins, inventoryHandler.Recompute)
	inv.Post("/reconcile", admins, inventoryHandler.Reconcile)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", writers, productHandler.Create)
	products.Get("/", readers, productHandler.List)
	products.Get("/:id", readers, productHandler.GetByID)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", admins, productHandler.Delete)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", writers, warehouseHandler.Create)
	warehouses.Get("/", readers, warehouseHandler.List)
	warehouses.Get("/:id", readers, warehouseHandler.GetByID)
	warehouses.Put("/:id", writers, warehouseHandler.Update)
	warehouses.Delete("/:id", admins, warehouseHandler.Delete)

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", writers, categoryHandler.Create)
	categories.Get("/", readers, categoryHandler.List)
	categories.Get("/:id", readers, categoryHandler.GetByID)
	categories.Put("/:id", writers, categoryHandler.Update)
	categories.Delete("/:id", admins, categoryHandler.Delete)

	// Reports
	reports := api.Group("/reports", readers)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/stock", reportHandler.Stock)
	reports.Get("/stock/export", reportHandler.ExportStock)
	reports.Get("/movements", reportHandler.Movements)
	reports.Get("/low-stock", reportHandler.LowStock)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/summary", readers, dashboardHandler.GetSummary)
}
