package events

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/marketplace/backend/internal/events"
	"github.com/zhouzirui/marketplace/backend/internal/logging"
)

func setupServer(t *testing.T) (*httptest.Server, *events.Hub) {
	t.Helper()
	hub := events.NewHub(8, logging.Nop())
	r := chi.NewRouter()
	New(hub, logging.Nop()).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func waitForSubscribers(t *testing.T, hub *events.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketReceivesChanges(t *testing.T) {
	srv, hub := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/changes"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForSubscribers(t, hub, 1)
	sent := hub.Publish(events.Change{Collection: "users", Op: events.OpCreated, RecordID: 1})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got events.Change
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, "users.created", got.Name())
	assert.Equal(t, int64(1), got.RecordID)
}

func TestSSEReceivesChanges(t *testing.T) {
	srv, hub := setupServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	waitForSubscribers(t, hub, 1)
	hub.Publish(events.Change{Collection: "offers", Op: events.OpDeleted, RecordID: 9})

	reader := bufio.NewReader(resp.Body)
	var eventLine string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			eventLine = strings.TrimSpace(line)
			break
		}
	}
	assert.Equal(t, "event: offers.deleted", eventLine)
}
