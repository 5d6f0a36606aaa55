package payment

import (
	"context"
	"errors"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Intent is the gateway-side payment record a client completes.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// Processor abstracts the payment gateway so the order lifecycle is written
// once against it. The real gateway and the mock are selected by
// configuration at startup.
type Processor interface {
	// CreateIntent registers a payment of amount minor units (cents) for the
	// given user. idempotencyKey makes client retries safe.
	CreateIntent(ctx context.Context, amount int64, currency string, userID int64, idempotencyKey string) (*Intent, error)
}
