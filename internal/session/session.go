// Package session holds per-customer conversation state.
package session

import (
	"context"
	"time"

	"github.com/djenggot/orderbot/internal/order"
)

// Step is the position of a customer inside the order dialogue.
type Step string

const (
	StepIdle            Step = "idle"
	StepAwaitingName    Step = "awaitingName"
	StepAwaitingFood    Step = "awaitingFood"
	StepAwaitingPayment Step = "awaitingPayment"
)

// Session is the in-progress conversation for one customer. A customer
// with no stored session is idle.
type Session struct {
	Step      Step        `json:"step"`
	Draft     order.Draft `json:"draft"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Active reports whether the session is mid-flow.
func (s *Session) Active() bool {
	return s != nil && s.Step != StepIdle
}

// Store persists sessions keyed by customer id. Implementations expire
// sessions after the idle timeout so a stalled conversation resets itself.
type Store interface {
	// Get returns the customer's session, or nil when none exists.
	Get(ctx context.Context, customerID string) (*Session, error)
	// Put saves the session and refreshes its idle deadline.
	Put(ctx context.Context, customerID string, s *Session) error
	// Delete resets the customer to idle.
	Delete(ctx context.Context, customerID string) error
}
