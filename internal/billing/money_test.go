package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.004", "10.00"},
		{"10.005", "10.01"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"99.999", "100.00"},
		{"5", "5.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(dec(tt.in)).StringFixed(2), "Round2(%s)", tt.in)
	}
}

func TestCentsRoundTrip(t *testing.T) {
	assert.Equal(t, int64(1234), Cents(dec("12.34")))
	assert.Equal(t, int64(10), Cents(dec("0.1")))
	assert.Equal(t, int64(1001), Cents(dec("10.005")))
	assert.Equal(t, "12.34", FromCents(1234).StringFixed(2))
	assert.Equal(t, "0.01", FromCents(1).StringFixed(2))
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"9.9", "R$ 9,90"},
		{"123.45", "R$ 123,45"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"999.999", "R$ 1.000,00"},
		{"0.05", "R$ 0,05"},
		{"-10", "-R$ 10,00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBRL(dec(tt.in)), "FormatBRL(%s)", tt.in)
	}
}
