// Package numfmt formatea cantidades según la configuración regional de los reportes.
package numfmt

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formatea cantidades con separadores del locale.
type Formatter struct {
	p *message.Printer
}

// New construye un Formatter. Un locale inválido cae a español.
func New(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &Formatter{p: message.NewPrinter(tag)}
}

// Quantity formatea con hasta 4 decimales, sin ceros sobrantes.
func (f *Formatter) Quantity(d decimal.Decimal) string {
	v, _ := d.Float64()
	return f.p.Sprint(number.Decimal(v, number.MaxFractionDigits(4)))
}

// Integer formatea un entero con separador de miles.
func (f *Formatter) Integer(n int) string {
	return f.p.Sprint(number.Decimal(n))
}
