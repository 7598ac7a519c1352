package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un saldo: exactamente una fila por (tenant, producto, bodega).
type StockKey struct {
	TenantID    string
	ProductID   string
	WarehouseID string
}

// String se usa como nombre de la sección exclusiva por clave.
func (k StockKey) String() string {
	return k.TenantID + "/" + k.ProductID + "/" + k.WarehouseID
}

// Stock es el saldo materializado de un producto en una bodega (proyección del ledger).
// Solo el motor de reconciliación lo escribe.
type Stock struct {
	TenantID    string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	Version     int64     // 0 = la fila nunca fue escrita por el motor
	LastUpdated time.Time // CreatedAt del último movimiento aplicado
}

// Key devuelve la clave compuesta del saldo.
func (s *Stock) Key() StockKey {
	return StockKey{TenantID: s.TenantID, ProductID: s.ProductID, WarehouseID: s.WarehouseID}
}

// EmptyStock saldo en cero para una clave sin fila.
func EmptyStock(key StockKey) *Stock {
	return &Stock{
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		WarehouseID: key.WarehouseID,
		Quantity:    decimal.Zero,
	}
}
