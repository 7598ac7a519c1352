package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockQueryUseCase es la fachada de lectura: todo consumidor (API, reportes, dashboard)
// obtiene totales, desglose por bodega y niveles de stock desde aquí. Lee solo el Balance
// Store y el catálogo; no toma locks.
type StockQueryUseCase struct {
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	reportRepo    repository.ReportRepository
}

// NewStockQueryUseCase construye la fachada.
func NewStockQueryUseCase(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	reportRepo repository.ReportRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		reportRepo:    reportRepo,
	}
}

// WarehouseBalance saldo de un producto en una bodega.
type WarehouseBalance struct {
	WarehouseID   string
	WarehouseName string
	Quantity      decimal.Decimal
	LastUpdated   time.Time
}

// ProductStockSummary total, nivel y desglose de un producto.
type ProductStockSummary struct {
	ProductID     string
	TotalStock    decimal.Decimal
	MinStockLevel decimal.Decimal
	Level         inventory.StockLevel
	IsLowStock    bool
	IsCritical    bool
	Warehouses    []WarehouseBalance
}

// ProductStockStatus estado de stock de un producto para listados y reportes.
type ProductStockStatus struct {
	ProductID     string
	SKU           string
	ProductName   string
	CategoryName  string
	Unit          string
	MinStockLevel decimal.Decimal
	TotalStock    decimal.Decimal
	Level         inventory.StockLevel
	Shortage      decimal.Decimal
}

// GetBalance saldo de una clave; cero si nunca hubo movimientos.
func (uc *StockQueryUseCase) GetBalance(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	if key.TenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.Invalid("product_id y warehouse_id son obligatorios")
	}
	return uc.stockRepo.Get(ctx, key)
}

// TotalStock suma los saldos del producto en todas las bodegas.
func (uc *StockQueryUseCase) TotalStock(ctx context.Context, tenantID, productID string) (decimal.Decimal, error) {
	rows, err := uc.stockRepo.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range rows {
		total = total.Add(s.Quantity)
	}
	return total, nil
}

// IsLowStock total <= mínimo del producto.
func (uc *StockQueryUseCase) IsLowStock(ctx context.Context, product *entity.Product) (bool, error) {
	total, err := uc.TotalStock(ctx, product.TenantID, product.ID)
	if err != nil {
		return false, err
	}
	return inventory.IsLowStock(total, product.MinStockLevel), nil
}

// IsCritical total <= mínimo / 2.
func (uc *StockQueryUseCase) IsCritical(ctx context.Context, product *entity.Product) (bool, error) {
	total, err := uc.TotalStock(ctx, product.TenantID, product.ID)
	if err != nil {
		return false, err
	}
	return inventory.IsCritical(total, product.MinStockLevel), nil
}

// WarehouseBreakdown una entrada por fila de saldo del producto, con el nombre de la bodega.
func (uc *StockQueryUseCase) WarehouseBreakdown(ctx context.Context, tenantID, productID string) ([]WarehouseBalance, error) {
	rows, err := uc.stockRepo.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	out := make([]WarehouseBalance, 0, len(rows))
	for _, s := range rows {
		wb := WarehouseBalance{WarehouseID: s.WarehouseID, Quantity: s.Quantity, LastUpdated: s.LastUpdated}
		w, err := uc.warehouseRepo.GetByID(ctx, tenantID, s.WarehouseID)
		if err != nil {
			return nil, err
		}
		if w != nil {
			wb.WarehouseName = w.Name
		}
		out = append(out, wb)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WarehouseName < out[j].WarehouseName })
	return out, nil
}

// ProductSummary total, nivel y desglose de un producto del tenant.
func (uc *StockQueryUseCase) ProductSummary(ctx context.Context, tenantID, productID string) (*ProductStockSummary, error) {
	if tenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	product, err := uc.productRepo.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	breakdown, err := uc.WarehouseBreakdown(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, wb := range breakdown {
		total = total.Add(wb.Quantity)
	}
	return &ProductStockSummary{
		ProductID:     product.ID,
		TotalStock:    total,
		MinStockLevel: product.MinStockLevel,
		Level:         inventory.Classify(total, product.MinStockLevel),
		IsLowStock:    inventory.IsLowStock(total, product.MinStockLevel),
		IsCritical:    inventory.IsCritical(total, product.MinStockLevel),
		Warehouses:    breakdown,
	}, nil
}

// StockStatus estado de todos los productos activos del tenant, ordenado por nombre.
func (uc *StockQueryUseCase) StockStatus(ctx context.Context, tenantID string) ([]ProductStockStatus, error) {
	if tenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	rows, err := uc.reportRepo.ProductStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]ProductStockStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductStockStatus{
			ProductID:     r.ProductID,
			SKU:           r.SKU,
			ProductName:   r.ProductName,
			CategoryName:  r.CategoryName,
			Unit:          r.Unit,
			MinStockLevel: r.MinStockLevel,
			TotalStock:    r.TotalStock,
			Level:         inventory.Classify(r.TotalStock, r.MinStockLevel),
			Shortage:      inventory.Shortage(r.TotalStock, r.MinStockLevel),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// LowStockProducts productos en nivel low o critical, primero los de mayor faltante.
func (uc *StockQueryUseCase) LowStockProducts(ctx context.Context, tenantID string) ([]ProductStockStatus, error) {
	all, err := uc.StockStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	low := make([]ProductStockStatus, 0)
	for _, p := range all {
		if p.Level != inventory.StockLevelNormal {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		if !low[i].Shortage.Equal(low[j].Shortage) {
			return low[i].Shortage.GreaterThan(low[j].Shortage)
		}
		return low[i].ProductName < low[j].ProductName
	})
	return low, nil
}
