package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/farmmarket/internal/notification"
)

func TestService_OrderPlaced_Recipients(t *testing.T) {
	svc := notification.NewService()

	svc.OrderPlaced(1, []int64{10, 11}, "ORD-1")

	for _, userID := range []int64{1, 10, 11} {
		list := svc.ListByUser(userID)
		require.Len(t, list, 1, "user %d", userID)
		assert.Equal(t, notification.TypeOrderPlaced, list[0].Type)
		assert.Equal(t, userID, list[0].UserID)
		assert.False(t, list[0].Read)
	}

	assert.Empty(t, svc.ListByUser(99))
}

func TestService_IDsMonotonic_NewestFirst(t *testing.T) {
	svc := notification.NewService()

	svc.OrderConfirmed(1, "ORD-1")
	svc.OrderShipped(1, "ORD-1")
	svc.OrderDelivered(1, "ORD-1")

	list := svc.ListByUser(1)
	require.Len(t, list, 3)
	assert.Equal(t, notification.TypeOrderDelivered, list[0].Type)
	assert.Equal(t, notification.TypeOrderConfirmed, list[2].Type)
	assert.Greater(t, list[0].ID, list[1].ID)
	assert.Greater(t, list[1].ID, list[2].ID)
}

func TestService_MarkRead(t *testing.T) {
	svc := notification.NewService()
	svc.OrderConfirmed(1, "ORD-1")

	id := svc.ListByUser(1)[0].ID

	assert.ErrorIs(t, svc.MarkRead(2, id), notification.ErrNotFound)
	require.NoError(t, svc.MarkRead(1, id))
	assert.True(t, svc.ListByUser(1)[0].Read)
}

func TestService_MarkAllRead(t *testing.T) {
	svc := notification.NewService()
	svc.PaymentReceived(1, []int64{10}, "ORD-1")
	svc.OrderConfirmed(1, "ORD-1")

	svc.MarkAllRead(1)

	for _, n := range svc.ListByUser(1) {
		assert.True(t, n.Read)
	}
	// Other users' lists are untouched.
	require.Len(t, svc.ListByUser(10), 1)
	assert.False(t, svc.ListByUser(10)[0].Read)
}

func TestService_Delete(t *testing.T) {
	svc := notification.NewService()
	svc.OrderConfirmed(1, "ORD-1")
	svc.OrderShipped(1, "ORD-1")

	list := svc.ListByUser(1)
	require.Len(t, list, 2)

	assert.ErrorIs(t, svc.Delete(1, 999), notification.ErrNotFound)
	require.NoError(t, svc.Delete(1, list[1].ID))

	remaining := svc.ListByUser(1)
	require.Len(t, remaining, 1)
	assert.Equal(t, list[0].ID, remaining[0].ID)
}

func TestService_OrderCancelled(t *testing.T) {
	svc := notification.NewService()
	svc.OrderCancelled([]int64{1, 10}, "ORD-1")

	assert.Len(t, svc.ListByUser(1), 1)
	assert.Len(t, svc.ListByUser(10), 1)
	assert.Equal(t, notification.TypeOrderCancelled, svc.ListByUser(1)[0].Type)
}
