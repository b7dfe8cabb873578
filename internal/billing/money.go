// Package billing holds the pure pricing functions: BRL money rounding
// and formatting, coupon and PIX discounts, and card installment plans.
//
// Everything here is side-effect free and operates on decimals; loading
// rates/settings and persisting results is the services' job. Keeping the
// arithmetic pure makes the rounding-reconciliation rules directly
// testable.
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Round2 rounds to 2 decimal places, half away from zero. All charged
// amounts, discounts and totals pass through this before persisting so
// NUMERIC(10,2) columns never truncate.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents converts a BRL amount into centavos after rounding.
func Cents(d decimal.Decimal) int64 {
	return Round2(d).Mul(hundred).IntPart()
}

// FromCents converts centavos back into a BRL decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatBRL renders an amount the way Brazilian customers read it:
// "R$ 1.234,56". Negative amounts carry a leading minus: "-R$ 10,00".
func FormatBRL(d decimal.Decimal) string {
	rounded := Round2(d)
	negative := rounded.IsNegative()

	s := rounded.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")

	// Thousands separators, right to left.
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
