package inventory

import "github.com/shopspring/decimal"

// StockLevel clasificación del stock total de un producto frente a su mínimo.
type StockLevel string

const (
	StockLevelNormal   StockLevel = "normal"
	StockLevelLow      StockLevel = "low"
	StockLevelCritical StockLevel = "critical"
)

var two = decimal.NewFromInt(2)

// IsLowStock total <= mínimo.
func IsLowStock(total, minLevel decimal.Decimal) bool {
	return total.LessThanOrEqual(minLevel)
}

// IsCritical total <= mínimo / 2.
func IsCritical(total, minLevel decimal.Decimal) bool {
	return total.LessThanOrEqual(minLevel.Div(two))
}

// Classify devuelve el nivel del stock; critical tiene prioridad sobre low.
func Classify(total, minLevel decimal.Decimal) StockLevel {
	switch {
	case IsCritical(total, minLevel):
		return StockLevelCritical
	case IsLowStock(total, minLevel):
		return StockLevelLow
	default:
		return StockLevelNormal
	}
}

// Shortage faltante hasta el mínimo (nunca negativo).
func Shortage(total, minLevel decimal.Decimal) decimal.Decimal {
	s := minLevel.Sub(total)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}
