package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicCatalog = "storefront.catalog"
	TopicOrders  = "storefront.orders"
	TopicMedia   = "storefront.media"
)

const (
	EventProductCreated      = "ProductCreated"
	EventProductUpdated      = "ProductUpdated"
	EventProductStockChanged = "ProductStockChanged"
	EventProductDeleted      = "ProductDeleted"
	EventOrderPlaced         = "OrderPlaced"
	EventOrderDeleted        = "OrderDeleted"
	EventMediaOrphaned       = "MediaOrphaned"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product_id / order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ProductPayload struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock"`
}

type StockChangedPayload struct {
	ProductID string `json:"product_id"`
	OldStock  int    `json:"old_stock"`
	NewStock  int    `json:"new_stock"`
}

type ProductDeletedPayload struct {
	ProductID string   `json:"product_id"`
	Images    []string `json:"images,omitempty"`
}

type OrderPlacedPayload struct {
	OrderID   string          `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type OrderDeletedPayload struct {
	OrderID      string `json:"order_id"`
	PaymentProof string `json:"payment_proof"`
}

// MediaOrphanedPayload names stored files no record points to.
type MediaOrphanedPayload struct {
	Names  []string `json:"names"`
	Reason string   `json:"reason"`
}
