package order

import "time"

type Status string

// The authoritative status set. Transitions happen only through the named
// service operations (Pay, Approve, Ship, Deliver, Cancel) — there is no way
// to set an arbitrary status on an order.
const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusPaid:      true,
		StatusCancelled: true,
	},
	StatusPaid: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return allowedTransitions[s][next]
}

type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"order_id" db:"order_id"`
	ProductID int64   `json:"product_id" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"` // unit price at order time
}

type Order struct {
	ID          int64       `json:"id" db:"id"`
	BuyerID     int64       `json:"buyer_id" db:"buyer_id"`
	OrderNumber string      `json:"order_number" db:"order_number"`
	Status      Status      `json:"status" db:"status"`
	Total       float64     `json:"total" db:"total"`
	Items       []OrderItem `json:"items" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}
