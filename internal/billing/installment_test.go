package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardTotalInterestFree(t *testing.T) {
	total := CardTotal(dec("300.00"), 3, 3, dec("1.99"))
	assert.Equal(t, "300.00", total.StringFixed(2))

	single := CardTotal(dec("99.90"), 1, 3, dec("1.99"))
	assert.Equal(t, "99.90", single.StringFixed(2))
}

func TestCardTotalWithInterest(t *testing.T) {
	// 300 × 1.0199^6 = 337.650039…
	total := CardTotal(dec("300.00"), 6, 3, dec("1.99"))
	assert.Equal(t, "337.65", total.StringFixed(2))

	// Zero rate disables interest regardless of installment count.
	free := CardTotal(dec("300.00"), 12, 3, decimal.Zero)
	assert.Equal(t, "300.00", free.StringFixed(2))
}

func TestSplitInstallmentsFirstAbsorbsRemainder(t *testing.T) {
	amounts := SplitInstallments(dec("100.00"), 3)

	require.Len(t, amounts, 3)
	assert.Equal(t, "33.34", amounts[0].StringFixed(2))
	assert.Equal(t, "33.33", amounts[1].StringFixed(2))
	assert.Equal(t, "33.33", amounts[2].StringFixed(2))
}

func TestSplitInstallmentsReconcile(t *testing.T) {
	// The sum of the parts must equal the charged total to the centavo,
	// whatever the total and count.
	tests := []struct {
		total string
		n     int
	}{
		{"100.00", 3},
		{"337.65", 6},
		{"0.05", 3},
		{"19.99", 12},
		{"1234.56", 7},
		{"50.00", 1},
		{"0.01", 2},
	}

	for _, tt := range tests {
		amounts := SplitInstallments(dec(tt.total), tt.n)
		require.Len(t, amounts, tt.n, "split %s into %d", tt.total, tt.n)

		sum := decimal.Zero
		for _, a := range amounts {
			sum = sum.Add(a)
		}
		assert.True(t, sum.Equal(dec(tt.total)),
			"split %s into %d: parts sum to %s", tt.total, tt.n, sum)

		// Parts differ only by the absorbed remainder, always under n centavos.
		for _, a := range amounts[1:] {
			diff := amounts[0].Sub(a).Abs()
			assert.True(t, diff.LessThan(FromCents(int64(tt.n))),
				"split %s into %d: uneven parts", tt.total, tt.n)
		}
	}
}

func TestBuildPlan(t *testing.T) {
	plan := BuildPlan(dec("300.00"), 6, 3, dec("1.99"))

	assert.Equal(t, 6, plan.Installments)
	assert.Equal(t, "337.65", plan.Total.StringFixed(2))
	assert.False(t, plan.InterestFree)
	require.Len(t, plan.Amounts, 6)
	assert.Equal(t, "56.30", plan.Amounts[0].StringFixed(2))
	assert.Equal(t, "56.27", plan.Amounts[1].StringFixed(2))

	freePlan := BuildPlan(dec("300.00"), 3, 3, dec("1.99"))
	assert.Equal(t, "300.00", freePlan.Total.StringFixed(2))
	assert.True(t, freePlan.InterestFree)
	require.Len(t, freePlan.Amounts, 3)
	assert.Equal(t, "100.00", freePlan.Amounts[0].StringFixed(2))

	clamped := BuildPlan(dec("50.00"), 0, 3, dec("1.99"))
	assert.Equal(t, 1, clamped.Installments)
	assert.Equal(t, "50.00", clamped.Total.StringFixed(2))
}
