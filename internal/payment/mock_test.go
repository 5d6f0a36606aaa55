package payment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/farmmarket/internal/payment"
)

func TestMockProcessor_CreateIntent(t *testing.T) {
	p := payment.NewMockProcessor()

	_, err := p.CreateIntent(context.Background(), 0, "usd", 1, "key")
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)

	_, err = p.CreateIntent(context.Background(), -100, "usd", 1, "key")
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)

	first, err := p.CreateIntent(context.Background(), 1000, "usd", 1, "key")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), first.Amount)
	assert.Equal(t, "usd", first.Currency)
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.ClientSecret)

	second, err := p.CreateIntent(context.Background(), 500, "usd", 2, "key")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
