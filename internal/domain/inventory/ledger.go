// Package inventory contiene las reglas puras del ledger de stock: aplicación de
// movimientos, fold completo y orden de reproducción. No tiene dependencias de infraestructura.
package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// QuantityScale máximo de decimales admitidos en cantidades (NUMERIC(20,4)).
const QuantityScale = 4

// MaxQuantity cota exclusiva de cantidades y saldos: NUMERIC(20,4) deja 16 dígitos enteros.
var MaxQuantity = decimal.New(1, 16)

// TimestampResolution resolución de CreatedAt en el almacenamiento.
const TimestampResolution = time.Microsecond

// ValidateQuantity verifica el rango de la cantidad según el tipo.
// in/out exigen > 0; adjustment admite 0 (saldo objetivo).
func ValidateQuantity(t entity.MovementType, q decimal.Decimal) error {
	if !t.Valid() {
		return domain.Invalid("movement_type %q no soportado", t)
	}
	if !q.Equal(q.Truncate(QuantityScale)) {
		return domain.Invalid("quantity admite como máximo %d decimales", QuantityScale)
	}
	if q.Abs().GreaterThanOrEqual(MaxQuantity) {
		return domain.Invalid("quantity debe ser menor que %s", MaxQuantity)
	}
	switch t {
	case entity.MovementTypeAdjustment:
		if q.IsNegative() {
			return domain.Invalid("quantity debe ser >= 0 para adjustment")
		}
	default:
		if !q.IsPositive() {
			return domain.Invalid("quantity debe ser > 0 para %s", t)
		}
	}
	return nil
}

// ValidateBalance rechaza un saldo resultante que no cabe en el almacenamiento.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.GreaterThanOrEqual(MaxQuantity) {
		return domain.Invalid("el saldo resultante supera el máximo admitido (%s)", MaxQuantity)
	}
	return nil
}

// Apply calcula el saldo resultante de aplicar un movimiento.
// clamped es true cuando una salida excede el saldo y se recorta en cero.
func Apply(balance decimal.Decimal, t entity.MovementType, q decimal.Decimal) (after decimal.Decimal, clamped bool) {
	switch t {
	case entity.MovementTypeIn:
		return balance.Add(q), false
	case entity.MovementTypeOut:
		after = balance.Sub(q)
		if after.IsNegative() {
			return decimal.Zero, true
		}
		return after, false
	case entity.MovementTypeAdjustment:
		return q, false
	}
	return balance, false
}

// SortForReplay ordena los movimientos por (CreatedAt, ID).
func SortForReplay(movs []*entity.StockMovement) {
	sort.SliceStable(movs, func(i, j int) bool {
		a, b := movs[i], movs[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Fold reconstruye el saldo desde cero aplicando los movimientos en orden de reproducción.
// No modifica el slice recibido.
func Fold(movs []*entity.StockMovement) decimal.Decimal {
	ordered := make([]*entity.StockMovement, len(movs))
	copy(ordered, movs)
	SortForReplay(ordered)

	balance := decimal.Zero
	for _, m := range ordered {
		balance, _ = Apply(balance, m.Type, m.Quantity)
	}
	return balance
}

// NextTimestamp devuelve el CreatedAt del siguiente movimiento de una clave:
// max(now, last + resolución), truncado a la resolución del almacenamiento.
// Garantiza orden estricto aunque el reloj retroceda o dos movimientos caigan en el mismo microsegundo.
func NextTimestamp(now, last time.Time) time.Time {
	now = now.UTC().Truncate(TimestampResolution)
	if last.IsZero() {
		return now
	}
	min := last.UTC().Truncate(TimestampResolution).Add(TimestampResolution)
	if now.Before(min) {
		return min
	}
	return now
}
