package payment

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockProcessor is the test/development gateway: every valid intent succeeds
// immediately. Selected when no Stripe key is configured.
type MockProcessor struct {
	seq atomic.Int64
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{}
}

func (p *MockProcessor) CreateIntent(ctx context.Context, amount int64, currency string, userID int64, idempotencyKey string) (*Intent, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	n := p.seq.Add(1)
	return &Intent{
		ID:           fmt.Sprintf("mock_pi_%d", n),
		ClientSecret: fmt.Sprintf("mock_secret_%d", n),
		Amount:       amount,
		Currency:     currency,
	}, nil
}
