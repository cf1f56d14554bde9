package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/djenggot/orderbot/internal/feed"
	"github.com/djenggot/orderbot/internal/order"
)

type fakeScanner struct {
	orders []order.Order
	err    error
}

func (f *fakeScanner) ScanCreatedDesc(ctx context.Context, fn func(order.Order) error) error {
	if f.err != nil {
		return f.err
	}
	for _, o := range f.orders {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

func ordersDesc(n, customers int) []order.Order {
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	out := make([]order.Order, 0, n)
	// Newest first, as the repository scan delivers them.
	for i := n - 1; i >= 0; i-- {
		out = append(out, order.Order{
			ID:         fmt.Sprintf("ord-%d", i),
			CustomerID: fmt.Sprintf("cust-%d", i%customers),
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

func TestBootstrapKeepsMaxTimestampOrderPerCustomer(t *testing.T) {
	const total, customers = 20, 4
	idx := NewLatestOrderIndex(&fakeScanner{orders: ordersDesc(total, customers)}, nil)
	require.NoError(t, idx.Bootstrap(context.Background()))

	require.Equal(t, customers, idx.Size())
	for c := 0; c < customers; c++ {
		customerID := fmt.Sprintf("cust-%d", c)
		// Highest order index congruent to c mod customers.
		want := fmt.Sprintf("ord-%d", total-customers+c)
		got, ok := idx.Latest(customerID)
		require.True(t, ok, customerID)
		require.Equal(t, want, got, customerID)
	}
}

func TestBootstrapPropagatesScanError(t *testing.T) {
	idx := NewLatestOrderIndex(&fakeScanner{err: errors.New("db down")}, nil)
	err := idx.Bootstrap(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bootstrap scan")
}

func TestBootstrapResetsPreviousState(t *testing.T) {
	scanner := &fakeScanner{orders: []order.Order{{ID: "ord-new", CustomerID: "a"}}}
	idx := NewLatestOrderIndex(scanner, nil)
	idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-stale", CustomerID: "b"}})

	require.NoError(t, idx.Bootstrap(context.Background()))

	_, ok := idx.Latest("b")
	require.False(t, ok, "stale customer should be gone after rebuild")
	got, _ := idx.Latest("a")
	require.Equal(t, "ord-new", got)
}

func TestModifiedOnLatestOrderNotifies(t *testing.T) {
	idx := NewLatestOrderIndex(&fakeScanner{}, nil)
	idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-A", CustomerID: "628"}})

	n := idx.Apply(feed.Event{Type: feed.Modified, Order: order.Order{
		ID: "ord-A", CustomerID: "628", Status: order.StatusReady,
	}})
	require.NotNil(t, n)
	require.Equal(t, "628", n.CustomerID)
	require.Equal(t, "ord-A", n.OrderID)
	require.Equal(t, order.StatusReady, n.Status)
}

func TestModifiedOnSupersededOrderIsSilent(t *testing.T) {
	idx := NewLatestOrderIndex(&fakeScanner{}, nil)
	idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-A", CustomerID: "628"}})
	idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-B", CustomerID: "628"}})

	n := idx.Apply(feed.Event{Type: feed.Modified, Order: order.Order{
		ID: "ord-A", CustomerID: "628", Status: order.StatusReady,
	}})
	require.Nil(t, n, "update to an old order must never reach the customer")
}

func TestAddedReplacesLatestUnconditionally(t *testing.T) {
	idx := NewLatestOrderIndex(&fakeScanner{}, nil)
	idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-A", CustomerID: "628"}})

	n := idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-C", CustomerID: "628"}})
	require.Nil(t, n, "added events never notify")

	got, _ := idx.Latest("628")
	require.Equal(t, "ord-C", got)

	// The in-flight modified on the old latest is now suppressed.
	require.Nil(t, idx.Apply(feed.Event{Type: feed.Modified, Order: order.Order{
		ID: "ord-A", CustomerID: "628", Status: order.StatusReady,
	}}))
}

func TestRemovedIsANoOp(t *testing.T) {
	idx := NewLatestOrderIndex(&fakeScanner{}, nil)
	idx.Apply(feed.Event{Type: feed.Added, Order: order.Order{ID: "ord-A", CustomerID: "628"}})

	n := idx.Apply(feed.Event{Type: feed.Removed, Order: order.Order{ID: "ord-A", CustomerID: "628"}})
	require.Nil(t, n)

	// Entry is left stale rather than evicted.
	got, ok := idx.Latest("628")
	require.True(t, ok)
	require.Equal(t, "ord-A", got)
}
