package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NormalizeCPF strips formatting characters from a CPF, returning only its
// digits: "529.982.247-25" -> "52998224725". The result is what gets
// persisted and compared.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	b.Grow(11)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidCPF reports whether raw is a valid Brazilian CPF document number.
//
// Formatting characters are ignored, so "529.982.247-25" and "52998224725"
// are equivalent. Validation follows the official algorithm: 11 digits,
// not an all-repeated sequence, and both mod-11 check digits correct.
func IsValidCPF(raw string) bool {
	normalized := NormalizeCPF(raw)
	if len(normalized) != 11 {
		return false
	}

	digits := make([]int, 11)
	for i, r := range normalized {
		digits[i] = int(r - '0')
	}

	// Sequences like 111.111.111-11 satisfy the checksum but are not
	// valid documents.
	repeated := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	if digits[9] != cpfCheckDigit(digits[:9]) {
		return false
	}
	return digits[10] == cpfCheckDigit(digits[:10])
}

// cpfCheckDigit computes a CPF verification digit for the given prefix.
// Digits are weighted from len(prefix)+1 down to 2; remainders below 2
// map to digit 0.
func cpfCheckDigit(prefix []int) int {
	weight := len(prefix) + 1
	sum := 0
	for _, d := range prefix {
		sum += d * weight
		weight--
	}

	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// validateCPFTag backs the `cpf` struct tag. Combine with omitempty for
// optional fields.
func validateCPFTag(fl validator.FieldLevel) bool {
	return IsValidCPF(fl.Field().String())
}
