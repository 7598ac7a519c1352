package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento soportados por el ledger.
const (
	MovementTypeIn         MovementType = "in"         // entrada: suma al saldo
	MovementTypeOut        MovementType = "out"        // salida: resta, nunca por debajo de cero
	MovementTypeAdjustment MovementType = "adjustment" // ajuste: fija el saldo absoluto
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement es una entrada del ledger. Inmutable una vez escrita: las correcciones son movimientos nuevos.
//
// Para adjustment, Quantity es el saldo objetivo, no un delta.
// CreatedAt es asignado por el servidor y es estrictamente creciente por StockKey,
// de modo que el orden (CreatedAt, ID) coincide con el orden de aplicación.
type StockMovement struct {
	ID             string
	TenantID       string
	ProductID      string
	WarehouseID    string
	Type           MovementType
	Quantity       decimal.Decimal
	ReferenceNo    string
	Notes          string
	IdempotencyKey string
	Fingerprint    string // hash del comando normalizado; detecta claves reutilizadas
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	Clamped        bool // salida recortada en cero
	CreatedBy      string
	CreatedAt      time.Time
}

// Key devuelve la clave de saldo a la que pertenece el movimiento.
func (m *StockMovement) Key() StockKey {
	return StockKey{TenantID: m.TenantID, ProductID: m.ProductID, WarehouseID: m.WarehouseID}
}
