// Package feed delivers live change events for the orders collection.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/djenggot/orderbot/internal/order"
)

// EventType tags a change event.
type EventType string

const (
	Added    EventType = "added"
	Modified EventType = "modified"
	Removed  EventType = "removed"
)

// Event is one change observed on the orders collection.
type Event struct {
	Type  EventType
	Order order.Order
}

type wirePayload struct {
	Type          string `json:"type"`
	OrderID       string `json:"order_id"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	FoodItem      string `json:"food_item"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// ParsePayload decodes the JSON payload emitted by the orders_change_notify
// trigger. Unknown event types and missing identifiers are rejected so a
// malformed notification never reaches the index.
func ParsePayload(raw []byte) (Event, error) {
	var p wirePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Event{}, fmt.Errorf("feed: decode payload: %w", err)
	}

	t := EventType(p.Type)
	switch t {
	case Added, Modified, Removed:
	default:
		return Event{}, fmt.Errorf("feed: unknown event type %q", p.Type)
	}
	if p.OrderID == "" {
		return Event{}, fmt.Errorf("feed: payload missing order_id")
	}
	if p.CustomerID == "" {
		return Event{}, fmt.Errorf("feed: payload missing customer_id")
	}

	createdAt, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("feed: bad created_at %q: %w", p.CreatedAt, err)
	}

	return Event{
		Type: t,
		Order: order.Order{
			ID:            p.OrderID,
			CustomerID:    p.CustomerID,
			CustomerName:  p.CustomerName,
			FoodItem:      p.FoodItem,
			PaymentMethod: p.PaymentMethod,
			Status:        p.Status,
			CreatedAt:     createdAt,
		},
	}, nil
}
