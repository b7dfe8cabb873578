package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable credit-hour package. CreditHours is granted to
// the buyer's ledger once the payment is approved.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreditHours int             `json:"credit_hours"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	Position    int             `json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
