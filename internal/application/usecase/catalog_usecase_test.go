package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const (
	tenant = "acme"
	actor  = "u-1"
)

type catalogFixture struct {
	store      *memory.Store
	products   *usecase.ProductUseCase
	warehouses *usecase.WarehouseUseCase
	categories *usecase.CategoryUseCase
	query      *appinventory.StockQueryUseCase
	ledger     *appinventory.StockLedgerUseCase
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	ledger := appinventory.NewStockLedgerUseCase(
		store.TxRunner(), lock.NewLocal(time.Second),
		store.MovementRepo(), store.StockRepo(), store.ProductRepo(), store.WarehouseRepo(),
		logger.Nop(), appinventory.DefaultLedgerOptions(),
	)
	query := appinventory.NewStockQueryUseCase(store.StockRepo(), store.ProductRepo(), store.WarehouseRepo(), store.ReportRepo())
	return &catalogFixture{
		store:      store,
		products:   usecase.NewProductUseCase(store.ProductRepo(), store.CategoryRepo(), store.WarehouseRepo(), ledger, query),
		warehouses: usecase.NewWarehouseUseCase(store.WarehouseRepo()),
		categories: usecase.NewCategoryUseCase(store.CategoryRepo()),
		query:      query,
		ledger:     ledger,
	}
}

func (f *catalogFixture) warehouse(t *testing.T, name string) string {
	t.Helper()
	w, err := f.warehouses.Create(context.Background(), tenant, dto.CreateWarehouseRequest{Name: name})
	require.NoError(t, err)
	return w.ID
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func qty(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductCreate_ConStockInicialRegistraEntrada(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")

	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{
		Name:            "Tornillo",
		SKU:             "TOR-1",
		MinStockLevel:   decimal.NewFromInt(5),
		InitialQuantity: qty(12),
		WarehouseID:     whID,
	})
	require.NoError(t, err)

	require.NotNil(t, p.Movement)
	assert.Equal(t, string(entity.MovementTypeIn), p.Movement.MovementType)
	assert.Equal(t, "product:"+p.ID+":initial", p.Movement.IdempotencyKey)
	assert.Equal(t, entity.DefaultUnit, p.Unit)

	got, err := f.products.GetByID(ctx, tenant, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TotalStock)
	assert.True(t, got.TotalStock.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "normal", got.StockLevel)
	require.Len(t, got.Warehouses, 1)
	assert.Equal(t, "Central", got.Warehouses[0].WarehouseName)
}

func TestProductCreate_Rechazos(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	_, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tuerca", SKU: "TUE-1"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   dto.CreateProductRequest
		want error
	}{
		{"sku repetido", dto.CreateProductRequest{Name: "Otra", SKU: "TUE-1"}, domain.ErrDuplicate},
		{"categoría inexistente", dto.CreateProductRequest{Name: "Otra", CategoryID: "no-existe"}, domain.ErrNotFound},
		{"mínimo negativo", dto.CreateProductRequest{Name: "Otra", MinStockLevel: decimal.NewFromInt(-1)}, domain.ErrInvalidInput},
		{"stock inicial sin bodega", dto.CreateProductRequest{Name: "Otra", InitialQuantity: qty(3)}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.Create(ctx, tenant, actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProductCreate_MovimientoInvalidoNoDejaProducto(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")
	inactive := f.warehouse(t, "Cerrada")
	require.NoError(t, f.warehouses.Delete(ctx, tenant, inactive))

	cases := []struct {
		name string
		in   dto.CreateProductRequest
		want error
	}{
		{"bodega inexistente", dto.CreateProductRequest{Name: "Perno", InitialQuantity: qty(5), WarehouseID: "no-such-wh"}, domain.ErrNotFound},
		{"bodega inactiva", dto.CreateProductRequest{Name: "Perno", InitialQuantity: qty(5), WarehouseID: inactive}, domain.ErrNotFound},
		{"cantidad negativa", dto.CreateProductRequest{Name: "Perno", InitialQuantity: qty(-2), WarehouseID: whID}, domain.ErrInvalidInput},
		{"demasiados decimales", dto.CreateProductRequest{Name: "Perno", InitialQuantity: dec("1.00001"), WarehouseID: whID}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.Create(ctx, tenant, actor, tc.in)
			assert.ErrorIs(t, err, tc.want)

			list, err := f.products.List(ctx, repository.ProductFilter{TenantID: tenant})
			require.NoError(t, err)
			assert.Empty(t, list.Items, "el producto no debe quedar guardado")
		})
	}
}

func TestProductCreate_FalloDeAlmacenamientoDevuelveProductoConAviso(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")
	f.store.FailNext(memory.OpMovementCreate, domain.ErrStorage)

	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{
		Name: "Perno", InitialQuantity: qty(5), WarehouseID: whID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.Nil(t, p.Movement)
	assert.Contains(t, p.StockWarning, usecase.InitialKey(p.ID))

	// Reintento con la clave derivada
	_, err = f.ledger.RecordMovement(ctx, appinventory.RecordMovementCommand{
		TenantID: tenant, ProductID: p.ID, WarehouseID: whID,
		Type: entity.MovementTypeIn, Quantity: decimal.NewFromInt(5),
		IdempotencyKey: usecase.InitialKey(p.ID),
	})
	require.NoError(t, err)

	total, err := f.query.TotalStock(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5)))
}

func TestProductUpdate_MovimientoInvalidoNoModificaCatalogo(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")
	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "A", SKU: "A-1"})
	require.NoError(t, err)

	name := "B"
	inactive := false
	cases := []struct {
		name string
		in   dto.UpdateProductRequest
		want error
	}{
		{"tipo desconocido", dto.UpdateProductRequest{Name: &name, StockQuantity: qty(3), WarehouseID: whID, MovementType: "bogus", IdempotencyKey: "k1"}, domain.ErrInvalidInput},
		{"bodega inexistente", dto.UpdateProductRequest{Name: &name, StockQuantity: qty(3), WarehouseID: "no-such-wh", IdempotencyKey: "k2"}, domain.ErrNotFound},
		{"entrada en cero", dto.UpdateProductRequest{Name: &name, StockQuantity: qty(0), WarehouseID: whID, MovementType: "in", IdempotencyKey: "k3"}, domain.ErrInvalidInput},
		{"desactiva y mueve stock", dto.UpdateProductRequest{Name: &name, IsActive: &inactive, StockQuantity: qty(3), WarehouseID: whID, IdempotencyKey: "k4"}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.Update(ctx, tenant, actor, p.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)

			got, err := f.products.GetByID(ctx, tenant, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "A", got.Name)
			assert.True(t, got.IsActive)
		})
	}
}

func TestProductUpdate_StockQuantityEsAjusteIdempotente(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")
	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{
		Name: "Tornillo", InitialQuantity: qty(10), WarehouseID: whID,
	})
	require.NoError(t, err)

	in := dto.UpdateProductRequest{StockQuantity: qty(4), WarehouseID: whID, IdempotencyKey: "edit-1"}
	for i := 0; i < 2; i++ {
		out, err := f.products.Update(ctx, tenant, actor, p.ID, in)
		require.NoError(t, err)
		require.NotNil(t, out.Movement)
		assert.Equal(t, string(entity.MovementTypeAdjustment), out.Movement.MovementType)
	}

	total, err := f.query.TotalStock(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(4)), "el reintento no debe aplicar el ajuste dos veces")

	movs, err := f.store.MovementRepo().List(ctx, repository.MovementFilter{TenantID: tenant, ProductID: p.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestProductUpdate_StockQuantitySinClave_EsInvalido(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")
	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tornillo"})
	require.NoError(t, err)

	_, err = f.products.Update(ctx, tenant, actor, p.ID, dto.UpdateProductRequest{StockQuantity: qty(4), WarehouseID: whID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_CambiaCatalogo(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tornillo", SKU: "A"})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tuerca", SKU: "B"})
	require.NoError(t, err)

	name, sku := "Tornillo 3/8", "B"
	_, err = f.products.Update(ctx, tenant, actor, p.ID, dto.UpdateProductRequest{SKU: &sku})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	minLevel := decimal.NewFromInt(8)
	out, err := f.products.Update(ctx, tenant, actor, p.ID, dto.UpdateProductRequest{Name: &name, MinStockLevel: &minLevel})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.True(t, out.MinStockLevel.Equal(minLevel))
	assert.Nil(t, out.Movement)
}

func TestProductList_BusquedaYActivos(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	a, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tornillo", SKU: "TOR-1"})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tuerca", Barcode: "7701"})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, "otro", actor, dto.CreateProductRequest{Name: "Tornillo ajeno"})
	require.NoError(t, err)

	list, err := f.products.List(ctx, repository.ProductFilter{TenantID: tenant, Search: "tor"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].ID)

	require.NoError(t, f.products.Delete(ctx, tenant, a.ID))
	list, err = f.products.List(ctx, repository.ProductFilter{TenantID: tenant, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Tuerca", list.Items[0].Name)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestProductDelete_ConservaElLedger(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	whID := f.warehouse(t, "Central")
	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tornillo", InitialQuantity: qty(3), WarehouseID: whID})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, tenant, p.ID))

	got, err := f.products.GetByID(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.TotalStock.Equal(decimal.NewFromInt(3)))

	assert.ErrorIs(t, f.products.Delete(ctx, "otro", p.ID), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bodegas
// ──────────────────────────────────────────────────────────────────────────────

func TestWarehouse_Coordenadas(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	lat, lng, far := 4.6, -74.08, 200.0

	_, err := f.warehouses.Create(ctx, tenant, dto.CreateWarehouseRequest{Name: "Sin lng", Latitude: &lat})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.warehouses.Create(ctx, tenant, dto.CreateWarehouseRequest{Name: "Lejos", Latitude: &lat, Longitude: &far})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	w, err := f.warehouses.Create(ctx, tenant, dto.CreateWarehouseRequest{Name: "Bogotá", Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	require.NotNil(t, w.Latitude)
	assert.InDelta(t, lat, *w.Latitude, 1e-9)
}

func TestWarehouse_UpdateYDelete(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	id := f.warehouse(t, "Central")

	name := "  Norte  "
	w, err := f.warehouses.Update(ctx, tenant, id, dto.UpdateWarehouseRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Norte", w.Name)

	require.NoError(t, f.warehouses.Delete(ctx, tenant, id))
	got, err := f.warehouses.GetByID(ctx, tenant, id)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = f.warehouses.GetByID(ctx, "otro", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategory_NombreDuplicado(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	_, err := f.categories.Create(ctx, tenant, dto.CreateCategoryRequest{Name: "Ferretería"})
	require.NoError(t, err)

	_, err = f.categories.Create(ctx, tenant, dto.CreateCategoryRequest{Name: "Ferretería"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.categories.Create(ctx, "otro", dto.CreateCategoryRequest{Name: "Ferretería"})
	assert.NoError(t, err, "el nombre es único por tenant")
}

func TestCategory_DeleteDejaProductosSinCategoria(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	c, err := f.categories.Create(ctx, tenant, dto.CreateCategoryRequest{Name: "Ferretería"})
	require.NoError(t, err)
	p, err := f.products.Create(ctx, tenant, actor, dto.CreateProductRequest{Name: "Tornillo", CategoryID: c.ID})
	require.NoError(t, err)
	require.Equal(t, c.ID, p.CategoryID)

	require.NoError(t, f.categories.Delete(ctx, tenant, c.ID))

	got, err := f.products.GetByID(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
	_, err = f.categories.GetByID(ctx, tenant, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
