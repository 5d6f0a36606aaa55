package realtime_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/farmmarket/internal/realtime"
)

func dialTestHub(t *testing.T, hub *realtime.Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := realtime.NewHub(nil)

	first := dialTestHub(t, hub)
	second := dialTestHub(t, hub)

	// The server registers the connection during the upgrade handshake, so
	// both clients are in the set by the time Dial returns.
	hub.Broadcast("payment_received", map[string]any{"order_id": float64(7)})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		assert.Equal(t, "payment_received", frame["type"])
		assert.Equal(t, float64(7), frame["order_id"])
	}
}

func TestHub_DroppedClientDoesNotBreakBroadcast(t *testing.T) {
	hub := realtime.NewHub(nil)

	gone := dialTestHub(t, hub)
	alive := dialTestHub(t, hub)

	require.NoError(t, gone.Close())
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast("order_confirmed", map[string]any{"order_id": float64(1)})

	require.NoError(t, alive.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := alive.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, "order_confirmed", frame["type"])
}
