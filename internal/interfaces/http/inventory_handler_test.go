package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/excel"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIFixtureWithLocker(t, lock.NewLocal(time.Second))
}

func newAPIFixtureWithLocker(t *testing.T, locker appinventory.KeyLocker) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	ledger := appinventory.NewStockLedgerUseCase(
		store.TxRunner(),
		locker,
		store.MovementRepo(),
		store.StockRepo(),
		store.ProductRepo(),
		store.WarehouseRepo(),
		logger.Nop(),
		appinventory.LedgerOptions{MaxRetries: 2, RetryBackoff: time.Millisecond},
	)
	query := appinventory.NewStockQueryUseCase(store.StockRepo(), store.ProductRepo(), store.WarehouseRepo(), store.ReportRepo())
	reports := appinventory.NewReportUseCase(query, store.ReportRepo(), map[string]appinventory.StockReportExporter{
		"xlsx": excel.NewStockReportExporter(),
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:      ledger,
		StockQuery:  query,
		ReportUC:    reports,
		ProductUC:   usecase.NewProductUseCase(store.ProductRepo(), store.CategoryRepo(), store.WarehouseRepo(), ledger, query),
		WarehouseUC: usecase.NewWarehouseUseCase(store.WarehouseRepo()),
		CategoryUC:  usecase.NewCategoryUseCase(store.CategoryRepo()),
		DashboardUC: appanalytics.NewDashboardUseCase(store.ReportRepo(), query),
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
	})
	return &apiFixture{app: app, store: store}
}

func tokenFor(t *testing.T, tenantID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, pkgjwt.Identity{UserID: testUserID, TenantID: tenantID, Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

// call ejecuta la petición y decodifica el JSON de respuesta en out (si no es nil).
func (f *apiFixture) call(t *testing.T, method, path, token string, body any, out any, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp
}

// seedCatalog crea una bodega y un producto (mínimo 10) con stock inicial vía la API.
func (f *apiFixture) seedCatalog(t *testing.T, token string, initial int64) (productID, warehouseID string) {
	t.Helper()
	var wh dto.WarehouseResponse
	resp := f.call(t, fiber.MethodPost, "/api/warehouses/", token, map[string]any{"name": "Principal"}, &wh)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var p dto.ProductResponse
	body := map[string]any{"name": "Tornillo", "sku": "TOR-1", "min_stock_level": 10}
	if initial > 0 {
		body["initial_quantity"] = initial
		body["warehouse_id"] = wh.ID
	}
	resp = f.call(t, fiber.MethodPost, "/api/products/", token, body, &p)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return p.ID, wh.ID
}

func movementBody(productID, warehouseID, typ string, qty int64, key string) map[string]any {
	return map[string]any{
		"product_id":      productID,
		"warehouse_id":    warehouseID,
		"movement_type":   typ,
		"quantity":        qty,
		"idempotency_key": key,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_RegistraYActualizaSaldo(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 20)

	var res dto.MovementResultResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "out", 5, "venta-1"), &res)

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.False(t, res.Replayed)
	assert.True(t, res.Movement.BalanceBefore.Equal(decimal.NewFromInt(20)))
	assert.True(t, res.Balance.Quantity.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, testUserID, res.Movement.CreatedBy)
}

func TestRecordMovement_ReintentoMismaClave_Retorna200SinDuplicar(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 20)
	body := movementBody(productID, warehouseID, "in", 7, "compra-1")

	var first, second dto.MovementResultResponse
	require.Equal(t, fiber.StatusCreated, f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, body, &first).StatusCode)
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, body, &second)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)

	var total dto.TotalStockResponse
	f.call(t, fiber.MethodGet, "/api/inventory/total-stock?product_id="+productID, admin, nil, &total)
	assert.True(t, total.TotalStock.Equal(decimal.NewFromInt(27)))
}

func TestRecordMovement_ClaveEnHeader(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 0)
	body := movementBody(productID, warehouseID, "IN", 3, "")

	var res dto.MovementResultResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, body, &res, apphttp.IdempotencyKeyHeader, "hdr-1")

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "hdr-1", res.Movement.IdempotencyKey)
	assert.Equal(t, "in", res.Movement.MovementType)
}

func TestRecordMovement_ClaveReusadaConOtroContenido_Retorna422(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 20)
	require.Equal(t, fiber.StatusCreated,
		f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "out", 2, "k-1"), nil).StatusCode)

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "out", 9, "k-1"), &errResp)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", errResp.Code)
}

func TestRecordMovement_BodyInvalido_Retorna400ConCampos(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, map[string]any{
		"product_id": "no-es-uuid",
		"quantity":   -1,
	}, &errResp)

	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", errResp.Kind)
	assert.Contains(t, errResp.Fields, "product_id")
	assert.Contains(t, errResp.Fields, "warehouse_id")
	assert.Contains(t, errResp.Fields, "movement_type")
	assert.Contains(t, errResp.Fields, "quantity")
	assert.Contains(t, errResp.Fields, "idempotency_key")
}

func TestRecordMovement_ProductoInexistente_Retorna404(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	_, warehouseID := f.seedCatalog(t, admin, 0)

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin,
		movementBody("11111111-1111-1111-1111-111111111111", warehouseID, "in", 1, "k-404"), &errResp)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestRecordMovement_VendedorNoPuedeEscribir(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	vendedor := tokenFor(t, testTenantID, pkgjwt.RoleVendedor)
	productID, warehouseID := f.seedCatalog(t, admin, 5)

	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", vendedor, movementBody(productID, warehouseID, "out", 1, "v-1"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// la lectura sí está permitida
	var total dto.TotalStockResponse
	resp = f.call(t, fiber.MethodGet, "/api/inventory/total-stock?product_id="+productID, vendedor, nil, &total)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, total.TotalStock.Equal(decimal.NewFromInt(5)))
}

func TestListMovements_FechaInvalida_Retorna400(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)

	resp := f.call(t, fiber.MethodGet, "/api/inventory/movements?from=ayer", admin, nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListMovements_FiltraPorProducto(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 10)
	f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "out", 4, "l-1"), nil)

	var list dto.MovementListResponse
	resp := f.call(t, fiber.MethodGet, "/api/inventory/movements?product_id="+productID, admin, nil, &list)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "out", list.Items[0].MovementType, "más reciente primero")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestTotalStock_NivelSegunMinimo(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 20)

	cases := []struct {
		name  string
		set   int64
		level string
	}{
		{"normal", 11, "normal"},
		{"igual al mínimo es low", 10, "low"},
		{"mitad del mínimo es critical", 5, "critical"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin,
				movementBody(productID, warehouseID, "adjustment", tc.set, "ajuste-"+tc.level), nil)
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)

			var total dto.TotalStockResponse
			f.call(t, fiber.MethodGet, "/api/inventory/total-stock?product_id="+productID, admin, nil, &total)
			assert.Equal(t, tc.level, total.Level)
			assert.True(t, total.TotalStock.Equal(decimal.NewFromInt(tc.set)))
		})
	}
}

func TestTotalStock_OtroTenantNoVeElProducto(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	otro := tokenFor(t, "tenant-otro", pkgjwt.RoleAdmin)
	productID, _ := f.seedCatalog(t, admin, 3)

	resp := f.call(t, fiber.MethodGet, "/api/inventory/total-stock?product_id="+productID, otro, nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetBalance_ClaveSinMovimientos_RetornaCero(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 0)

	var bal dto.BalanceResponse
	resp := f.call(t, fiber.MethodGet, "/api/inventory/balance?product_id="+productID+"&warehouse_id="+warehouseID, admin, nil, &bal)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, bal.Quantity.IsZero())
	assert.Nil(t, bal.LastUpdated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recompute / Reconcile
// ──────────────────────────────────────────────────────────────────────────────

func TestRecompute_SoloAdmin(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	bodeguero := tokenFor(t, testTenantID, pkgjwt.RoleBodeguero)
	productID, warehouseID := f.seedCatalog(t, admin, 8)
	path := "/api/inventory/recompute?product_id=" + productID + "&warehouse_id=" + warehouseID

	assert.Equal(t, fiber.StatusForbidden, f.call(t, fiber.MethodPost, path, bodeguero, nil, nil).StatusCode)

	var res dto.RecomputeResponse
	resp := f.call(t, fiber.MethodPost, path, admin, nil, &res)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, res.Diverged)
	assert.True(t, res.Computed.Equal(decimal.NewFromInt(8)))
}

func TestReconcile_ReparaSaldoCorrupto(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 8)
	f.store.OverwriteStock(&entity.Stock{
		TenantID:    testTenantID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.NewFromInt(99),
		Version:     1,
	})

	var dry dto.ReconcileResponse
	require.Equal(t, fiber.StatusOK, f.call(t, fiber.MethodPost, "/api/inventory/reconcile?dry_run=true", admin, nil, &dry).StatusCode)
	require.Len(t, dry.Divergent, 1)
	assert.Zero(t, dry.Repaired)

	var rep dto.ReconcileResponse
	require.Equal(t, fiber.StatusOK, f.call(t, fiber.MethodPost, "/api/inventory/reconcile", admin, nil, &rep).StatusCode)
	assert.Equal(t, 1, rep.Repaired)

	var total dto.TotalStockResponse
	f.call(t, fiber.MethodGet, "/api/inventory/total-stock?product_id="+productID, admin, nil, &total)
	assert.True(t, total.TotalStock.Equal(decimal.NewFromInt(8)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes y dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestExportStock_Xlsx(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	f.seedCatalog(t, admin, 4)

	resp := f.call(t, fiber.MethodGet, "/api/reports/stock/export?format=xlsx", admin, nil, nil)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "spreadsheetml")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx es un zip")
}

func TestExportStock_FormatoDesconocido_Retorna400(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodGet, "/api/reports/stock/export?format=csv", admin, nil, &errResp)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errResp.Code)
}

func TestLowStockReport_IncluyeProductoBajoMinimo(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, _ := f.seedCatalog(t, admin, 3)

	var rep dto.LowStockReportResponse
	resp := f.call(t, fiber.MethodGet, "/api/reports/low-stock", admin, nil, &rep)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, rep.Items, 1)
	assert.Equal(t, productID, rep.Items[0].ProductID)
	assert.Equal(t, "critical", rep.Items[0].Level)
	assert.True(t, rep.TotalShortage.Equal(decimal.NewFromInt(7)))
}

func TestDashboardSummary_Retorna200(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	f.seedCatalog(t, admin, 3)

	resp := f.call(t, fiber.MethodGet, "/api/dashboard/summary", tokenFor(t, testTenantID, pkgjwt.RoleVendedor), nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de concurrencia y almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

// busyLocker nunca concede el lock, igual que un lock tomado hasta el timeout.
type busyLocker struct{}

func (busyLocker) Lock(_ context.Context, key string) (func(), error) {
	return nil, fmt.Errorf("lock %s: %w: %w", key, domain.ErrConflict, context.DeadlineExceeded)
}

func TestRecordMovement_Conflicto_NoExponeDetalleInterno(t *testing.T) {
	f := newAPIFixtureWithLocker(t, busyLocker{})
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 0)

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "in", 1, "busy-1"), &errResp)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errResp.Code)
	assert.Equal(t, "conflict", errResp.Kind)
	assert.Equal(t, domain.ErrConflict.Error(), errResp.Message)
	assert.NotContains(t, errResp.Message, productID)
	assert.NotContains(t, errResp.Message, "intentos")
}

func TestRecordMovement_FalloDeAlmacenamiento_MensajeGenerico(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	productID, warehouseID := f.seedCatalog(t, admin, 0)
	f.store.FailNext(memory.OpMovementCreate, fmt.Errorf("%w: dial tcp 10.0.0.5:5432: connection refused", domain.ErrStorage))

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "in", 1, "st-1"), &errResp)

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "STORAGE_UNAVAILABLE", errResp.Code)
	assert.Equal(t, domain.ErrStorage.Error(), errResp.Message)
	assert.NotContains(t, errResp.Message, "10.0.0.5")
}

func TestCreateProduct_StockInicialFallido_Retorna201ConAviso(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	var wh dto.WarehouseResponse
	f.call(t, fiber.MethodPost, "/api/warehouses/", admin, map[string]any{"name": "Principal"}, &wh)
	f.store.FailNext(memory.OpMovementCreate, domain.ErrStorage)

	var p dto.ProductResponse
	resp := f.call(t, fiber.MethodPost, "/api/products/", admin,
		map[string]any{"name": "Tornillo", "initial_quantity": 5, "warehouse_id": wh.ID}, &p)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, p.ID)
	assert.Contains(t, p.StockWarning, usecase.InitialKey(p.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteProduct_SoloAdminYDesactiva(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)
	bodeguero := tokenFor(t, testTenantID, pkgjwt.RoleBodeguero)
	productID, warehouseID := f.seedCatalog(t, admin, 2)

	assert.Equal(t, fiber.StatusForbidden, f.call(t, fiber.MethodDelete, "/api/products/"+productID, bodeguero, nil, nil).StatusCode)
	assert.Equal(t, fiber.StatusNoContent, f.call(t, fiber.MethodDelete, "/api/products/"+productID, admin, nil, nil).StatusCode)

	// no se registran movimientos sobre productos inactivos
	resp := f.call(t, fiber.MethodPost, "/api/inventory/movements", admin, movementBody(productID, warehouseID, "in", 1, "tras-baja"), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateWarehouse_SinNombre_Retorna400(t *testing.T) {
	f := newAPIFixture(t)
	admin := tokenFor(t, testTenantID, pkgjwt.RoleAdmin)

	var errResp dto.ErrorResponse
	resp := f.call(t, fiber.MethodPost, "/api/warehouses/", admin, map[string]any{"address": "Calle 1"}, &errResp)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errResp.Fields, "name")
}
