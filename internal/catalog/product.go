package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxImages is the upload cap for one product.
const MaxImages = 6

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
