package order

import "time"

// Statuses an order moves through. The store is the source of truth; the
// bot only ever writes StatusPending and reports whatever it reads back.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order is a persisted order record. CreatedAt is assigned by the database
// at commit time and is the sole ranking used to decide a customer's
// latest order.
type Order struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	FoodItem      string    `json:"food_item"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Draft carries the fields collected during a conversation, before commit.
type Draft struct {
	CustomerID    string
	CustomerName  string
	FoodItem      string
	PaymentMethod string
}
