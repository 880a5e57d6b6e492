package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StockUpdatedType is the routing key / event type for quantity changes.
const StockUpdatedType = "inventory.stock-updated"

// StockUpdated is emitted after a stock quantity has been stored.
type StockUpdated struct {
	EventID     uuid.UUID `json:"eventId"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewStockUpdated(productID int64, productName string, quantity int) StockUpdated {
	return StockUpdated{
		EventID:     uuid.New(),
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher delivers domain events. Callers treat failures as best effort.
type Publisher interface {
	PublishStockUpdated(ctx context.Context, evt StockUpdated) error
	Close() error
}

// NopPublisher drops every event. Used when EVENTS_BACKEND=none.
type NopPublisher struct{}

func (NopPublisher) PublishStockUpdated(context.Context, StockUpdated) error { return nil }
func (NopPublisher) Close() error                                            { return nil }

func encode(evt StockUpdated) ([]byte, error) { return json.Marshal(evt) }
