package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a snapshot of a cart line at checkout time. It does not follow later
// edits or deletes of the product.
type Item struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID           string          `json:"id"`
	Fullname     string          `json:"fullname"`
	GCash        string          `json:"gcash"`
	Address      string          `json:"address"`
	Items        []Item          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	PaymentProof string          `json:"payment_proof"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SumItems is Σ price×quantity.
func SumItems(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
