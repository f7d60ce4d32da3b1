package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"wordduel/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialWS поднимает сервер, регистрирующий соединение в manager под userID
func dialWS(t *testing.T, manager *WSConnManager, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		manager.Add(userID, conn)
		close(registered)
	}))
	t.Cleanup(server.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not registered")
	}
	return client
}

func TestDeliverPushesToRecipient(t *testing.T) {
	manager := NewWSConnManager()
	client := dialWS(t, manager, "B")
	require.Equal(t, 1, manager.Connections("B"))

	body, err := json.Marshal(models.DuelNotification{
		Event:  models.EventChallenge,
		UserID: "B",
		DuelID: "d1",
		Status: models.DuelPendingAction,
	})
	require.NoError(t, err)
	require.NoError(t, deliver(body, manager))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := client.ReadMessage()
	require.NoError(t, err)

	var got models.DuelNotification
	require.NoError(t, json.Unmarshal(message, &got))
	assert.Equal(t, "d1", got.DuelID)
	assert.Equal(t, models.EventChallenge, got.Event)
}

func TestDeliverRejectsBadMessages(t *testing.T) {
	manager := NewWSConnManager()
	assert.Error(t, deliver([]byte("{not json"), manager))
	assert.Error(t, deliver([]byte(`{"duelId":"d1"}`), manager))
}

func TestPushWithoutConnections(t *testing.T) {
	manager := NewWSConnManager()
	assert.NoError(t, manager.Push(models.DuelNotification{UserID: "nobody", DuelID: "d1"}))
	assert.Equal(t, 0, manager.Connections("nobody"))
}

func TestRemoveConnection(t *testing.T) {
	manager := NewWSConnManager()
	dialWS(t, manager, "A")

	manager.mu.RLock()
	conn := manager.users["A"][0]
	manager.mu.RUnlock()

	manager.Remove("A", conn)
	assert.Equal(t, 0, manager.Connections("A"))
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "user.B", routingKey("B"))
}

func TestConcurrentPushesReachClient(t *testing.T) {
	manager := NewWSConnManager()
	client := dialWS(t, manager, "B")

	const senders = 50
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, manager.Push(models.DuelNotification{
				Event:  models.EventAttempt,
				UserID: "B",
				DuelID: fmt.Sprintf("d%d", i),
			}))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, senders)
	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	for len(seen) < senders {
		_, message, err := client.ReadMessage()
		require.NoError(t, err)
		var got models.DuelNotification
		require.NoError(t, json.Unmarshal(message, &got), string(message))
		seen[got.DuelID] = true
	}
	assert.Len(t, seen, senders)
}
