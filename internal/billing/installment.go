package billing

import (
	"github.com/shopspring/decimal"
)

// Plan is a card installment schedule. Amounts always sums exactly to
// Total; the first installment absorbs the centavos that floor division
// can't split evenly.
type Plan struct {
	Installments int               `json:"installments"`
	Total        decimal.Decimal   `json:"total"`
	Amounts      []decimal.Decimal `json:"amounts"`
	InterestFree bool              `json:"interest_free"`
}

// CardTotal computes the charged total for a card purchase. Installment
// counts up to interestFree cost the plain amount; above that, monthly
// compound interest applies over the full installment count:
// amount × (1 + i/100)^n.
func CardTotal(amount decimal.Decimal, installments, interestFree int, monthlyInterestPercent decimal.Decimal) decimal.Decimal {
	if installments <= interestFree || monthlyInterestPercent.IsZero() {
		return Round2(amount)
	}

	rate := monthlyInterestPercent.Div(hundred)
	factor := one.Add(rate).Pow(decimal.NewFromInt(int64(installments)))
	return Round2(amount.Mul(factor))
}

// SplitInstallments divides total into n centavo-exact parts. Each part is
// the floor division of the total in centavos; the remainder lands on the
// first part so the parts reconcile with the charged total to the centavo.
func SplitInstallments(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		n = 1
	}

	totalCents := Cents(total)
	base := totalCents / int64(n)
	remainder := totalCents - base*int64(n)

	amounts := make([]decimal.Decimal, n)
	amounts[0] = FromCents(base + remainder)
	for i := 1; i < n; i++ {
		amounts[i] = FromCents(base)
	}
	return amounts
}

// BuildPlan combines CardTotal and SplitInstallments into the schedule
// shown at checkout and persisted on the payment.
func BuildPlan(amount decimal.Decimal, installments, interestFree int, monthlyInterestPercent decimal.Decimal) Plan {
	if installments < 1 {
		installments = 1
	}

	total := CardTotal(amount, installments, interestFree, monthlyInterestPercent)
	return Plan{
		Installments: installments,
		Total:        total,
		Amounts:      SplitInstallments(total, installments),
		InterestFree: installments <= interestFree || monthlyInterestPercent.IsZero(),
	}
}
