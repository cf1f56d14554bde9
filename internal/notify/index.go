// Package notify decides which order-change events should reach customers.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/djenggot/orderbot/internal/feed"
	"github.com/djenggot/orderbot/internal/order"
	"github.com/djenggot/orderbot/pkg/logging"
)

// Notification is the decision that a status-update message should be sent
// to a customer now.
type Notification struct {
	CustomerID string
	OrderID    string
	Status     string
}

// Scanner walks all stored orders newest-first.
type Scanner interface {
	ScanCreatedDesc(ctx context.Context, fn func(order.Order) error) error
}

// LatestOrderIndex tracks, per customer, the id of the most recently
// created order, and filters change events down to the ones worth telling
// the customer about. Updates to a superseded order are dropped.
type LatestOrderIndex struct {
	mu     sync.Mutex
	latest map[string]string
	source Scanner
	logger *logging.Logger
}

// NewLatestOrderIndex creates an empty index over the given order source.
func NewLatestOrderIndex(source Scanner, logger *logging.Logger) *LatestOrderIndex {
	if source == nil {
		panic("notify: order scanner required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LatestOrderIndex{
		latest: make(map[string]string),
		source: source,
		logger: logger,
	}
}

// Bootstrap rebuilds the index from a full newest-first scan. The first
// order seen per customer is, by scan order, that customer's latest. Safe
// to call again after a feed reconnect; the map is rebuilt from scratch.
func (i *LatestOrderIndex) Bootstrap(ctx context.Context) error {
	rebuilt := make(map[string]string)
	err := i.source.ScanCreatedDesc(ctx, func(o order.Order) error {
		if _, seen := rebuilt[o.CustomerID]; !seen {
			rebuilt[o.CustomerID] = o.ID
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("notify: bootstrap scan: %w", err)
	}

	i.mu.Lock()
	i.latest = rebuilt
	i.mu.Unlock()

	i.logger.Info("latest-order index rebuilt", "customers", len(rebuilt))
	return nil
}

// Apply folds one change event into the index and returns a Notification
// when the event is a status change on the customer's latest order, nil
// otherwise.
func (i *LatestOrderIndex) Apply(e feed.Event) *Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch e.Type {
	case feed.Added:
		// A new order is by construction the customer's latest. The commit
		// confirmation is sent synchronously by the conversation flow, so
		// no notification fires here.
		i.latest[e.Order.CustomerID] = e.Order.ID
		return nil

	case feed.Modified:
		if i.latest[e.Order.CustomerID] != e.Order.ID {
			i.logger.Debug("suppressing update to superseded order",
				"order_id", e.Order.ID, "customer_id", e.Order.CustomerID)
			return nil
		}
		return &Notification{
			CustomerID: e.Order.CustomerID,
			OrderID:    e.Order.ID,
			Status:     e.Order.Status,
		}

	case feed.Removed:
		// Orders never disappear in the intended workflow; leave the entry
		// stale rather than evicting it.
		i.logger.Warn("unexpected removal event on orders feed",
			"order_id", e.Order.ID, "customer_id", e.Order.CustomerID)
		return nil

	default:
		i.logger.Warn("unexpected feed event type", "type", string(e.Type))
		return nil
	}
}

// Latest reports the tracked latest order id for a customer.
func (i *LatestOrderIndex) Latest(customerID string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	id, ok := i.latest[customerID]
	return id, ok
}

// Size reports how many customers are tracked.
func (i *LatestOrderIndex) Size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.latest)
}
