package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Referencias de los movimientos que genera el CRUD de productos.
const (
	refInitialStock = "STOCK-INICIAL"
	refProductEdit  = "EDICION-PRODUCTO"
)

// MovementRecorder puerto hacia el motor de stock. Todo cambio de cantidad pasa por aquí.
type MovementRecorder interface {
	RecordMovement(ctx context.Context, cmd appinventory.RecordMovementCommand) (*appinventory.MovementResult, error)
}

// StockSummaryReader lectura del stock agregado de un producto.
type StockSummaryReader interface {
	ProductSummary(ctx context.Context, tenantID, productID string) (*appinventory.ProductStockSummary, error)
}

// ProductUseCase casos de uso CRUD para productos. El stock nunca se escribe aquí:
// la cantidad inicial y los cambios de cantidad se registran como movimientos.
//
// Los datos del movimiento (bodega, tipo, cantidad) se validan antes de persistir el producto,
// así un request rechazado no deja cambios en el catálogo.
type ProductUseCase struct {
	repo          repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	warehouseRepo repository.WarehouseRepository
	recorder      MovementRecorder
	stock         StockSummaryReader
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	warehouseRepo repository.WarehouseRepository,
	recorder MovementRecorder,
	stock StockSummaryReader,
) *ProductUseCase {
	return &ProductUseCase{
		repo:          repo,
		categoryRepo:  categoryRepo,
		warehouseRepo: warehouseRepo,
		recorder:      recorder,
		stock:         stock,
	}
}

// InitialKey clave de idempotencia del movimiento de stock inicial de un producto.
func InitialKey(productID string) string {
	return "product:" + productID + ":initial"
}

// Create crea un producto. Con initial_quantity > 0 registra una entrada en la bodega indicada
// con clave de idempotencia derivada del producto (InitialKey).
//
// Si el producto queda guardado pero el movimiento falla (conflicto o almacenamiento), devuelve el
// producto con StockWarning; el cliente reintenta el movimiento con InitialKey.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku != "" {
		existing, err := uc.repo.GetBySKU(ctx, tenantID, sku)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, sku)
		}
	}
	if in.MinStockLevel.IsNegative() {
		return nil, domain.Invalid("min_stock_level no puede ser negativo")
	}
	if err := uc.ensureCategory(ctx, tenantID, in.CategoryID); err != nil {
		return nil, err
	}
	withStock := in.InitialQuantity != nil && !in.InitialQuantity.IsZero()
	if withStock {
		if in.WarehouseID == "" {
			return nil, domain.Invalid("warehouse_id es obligatorio con initial_quantity")
		}
		if err := uc.checkStockChange(ctx, tenantID, in.WarehouseID, entity.MovementTypeIn, *in.InitialQuantity); err != nil {
			return nil, err
		}
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:            id.String(),
		TenantID:      tenantID,
		CategoryID:    in.CategoryID,
		SKU:           sku,
		Barcode:       strings.TrimSpace(in.Barcode),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Unit:          unit,
		MinStockLevel: in.MinStockLevel,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := toProductResponse(product)

	if withStock {
		res, err := uc.recorder.RecordMovement(ctx, appinventory.RecordMovementCommand{
			TenantID:       tenantID,
			ProductID:      product.ID,
			WarehouseID:    in.WarehouseID,
			Type:           entity.MovementTypeIn,
			Quantity:       *in.InitialQuantity,
			ReferenceNo:    refInitialStock,
			IdempotencyKey: InitialKey(product.ID),
			ActorID:        userID,
		})
		if err != nil {
			out.StockWarning = fmt.Sprintf("stock inicial no registrado; reintente el movimiento con idempotency_key %s", InitialKey(product.ID))
			return out, nil
		}
		mv := appinventory.ToMovementDTO(res.Movement)
		out.Movement = &mv
	}
	return out, nil
}

// GetByID obtiene un producto con su stock total, nivel y desglose por bodega.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := toProductResponse(product)
	summary, err := uc.stock.ProductSummary(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	total := summary.TotalStock
	out.TotalStock = &total
	out.StockLevel = string(summary.Level)
	out.Warehouses = appinventory.ToBreakdownDTO(summary.Warehouses)
	return out, nil
}

// Update actualiza el catálogo del producto. stock_quantity se aplica como movimiento
// (adjustment por defecto) con la clave de idempotencia del request.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID, userID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku != "" && sku != product.SKU {
			existing, err := uc.repo.GetBySKU(ctx, tenantID, sku)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != product.ID {
				return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, sku)
			}
		}
		product.SKU = sku
	}
	if in.Barcode != nil {
		product.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		if err := uc.ensureCategory(ctx, tenantID, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.MinStockLevel != nil {
		if in.MinStockLevel.IsNegative() {
			return nil, domain.Invalid("min_stock_level no puede ser negativo")
		}
		product.MinStockLevel = *in.MinStockLevel
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	mt := entity.MovementType(strings.ToLower(strings.TrimSpace(in.MovementType)))
	if mt == "" {
		mt = entity.MovementTypeAdjustment
	}
	if in.StockQuantity != nil {
		if in.WarehouseID == "" || in.IdempotencyKey == "" {
			return nil, domain.Invalid("warehouse_id e idempotency_key son obligatorios con stock_quantity")
		}
		if !product.IsActive {
			return nil, domain.Invalid("stock_quantity no admite un producto inactivo")
		}
		if err := uc.checkStockChange(ctx, tenantID, in.WarehouseID, mt, *in.StockQuantity); err != nil {
			return nil, err
		}
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	out := toProductResponse(product)

	if in.StockQuantity != nil {
		res, err := uc.recorder.RecordMovement(ctx, appinventory.RecordMovementCommand{
			TenantID:       tenantID,
			ProductID:      product.ID,
			WarehouseID:    in.WarehouseID,
			Type:           mt,
			Quantity:       *in.StockQuantity,
			ReferenceNo:    refProductEdit,
			IdempotencyKey: in.IdempotencyKey,
			ActorID:        userID,
		})
		if err != nil {
			return nil, err
		}
		mv := appinventory.ToMovementDTO(res.Movement)
		out.Movement = &mv
	}
	return out, nil
}

// List lista productos del tenant con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Delete desactiva el producto. El ledger y los saldos se conservan.
func (uc *ProductUseCase) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := uc.get(ctx, tenantID, id); err != nil {
		return err
	}
	return uc.repo.Deactivate(ctx, tenantID, id)
}

func (uc *ProductUseCase) get(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return product, nil
}

// checkStockChange valida el movimiento que acompaña al request: tipo, cantidad y bodega activa.
func (uc *ProductUseCase) checkStockChange(ctx context.Context, tenantID, warehouseID string, mt entity.MovementType, q decimal.Decimal) error {
	if err := inventory.ValidateQuantity(mt, q); err != nil {
		return err
	}
	w, err := uc.warehouseRepo.GetByID(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if w == nil || !w.IsActive {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return nil
}

func (uc *ProductUseCase) ensureCategory(ctx context.Context, tenantID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	c, err := uc.categoryRepo.GetByID(ctx, tenantID, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		CategoryID:    p.CategoryID,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Description:   p.Description,
		Unit:          p.Unit,
		MinStockLevel: p.MinStockLevel,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
