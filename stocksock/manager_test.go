package stocksock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vitrine/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier accepts tokens of the form "t-<userid>".
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (string, error) {
	if !strings.HasPrefix(token, "t-") {
		return "", fmt.Errorf("bad token")
	}
	return strings.TrimPrefix(token, "t-"), nil
}

func newTestServer(t *testing.T) (*Manager, *httptest.Server) {
	t.Helper()
	mgr := NewManager(stubVerifier{})
	router := httprouter.New()
	router.GET("/ws/stock", mgr.HandleWS)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		mgr.Stop()
		srv.Close()
	})
	return mgr, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stock?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, mgr *Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for mgr.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, mgr.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn, out any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestHandleWSRejectsInvalidToken(t *testing.T) {
	_, srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stock?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	mgr, srv := newTestServer(t)

	c1 := dial(t, srv, "t-u1")
	c2 := dial(t, srv, "t-u2")
	waitForClients(t, mgr, 2)

	mgr.BroadcastStockUpdate(models.StockUpdate{Type: "stock_update", ProductID: "p1", Stock: 4})

	for _, conn := range []*websocket.Conn{c1, c2} {
		var got models.StockUpdate
		readFrame(t, conn, &got)
		assert.Equal(t, "p1", got.ProductID)
		assert.Equal(t, 4, got.Stock)
	}
}

func TestPrivateMessageDelivery(t *testing.T) {
	mgr, srv := newTestServer(t)

	sender := dial(t, srv, "t-u1")
	receiver := dial(t, srv, "t-u2")
	waitForClients(t, mgr, 2)

	msg := map[string]string{"type": "private", "to": "u2", "content": "hello"}
	require.NoError(t, sender.WriteJSON(msg))

	var got privateFrame
	readFrame(t, receiver, &got)
	assert.Equal(t, "private", got.Type)
	assert.Equal(t, "u1", got.From)
	assert.Equal(t, "hello", got.Content)
}

func TestPrivateMessageToDisconnectedUser(t *testing.T) {
	mgr, srv := newTestServer(t)

	sender := dial(t, srv, "t-u1")
	waitForClients(t, mgr, 1)

	msg := map[string]string{"type": "private", "to": "nobody", "content": "hello"}
	require.NoError(t, sender.WriteJSON(msg))

	// The sender stays connected and gets a soft error frame instead.
	var got errorFrame
	readFrame(t, sender, &got)
	assert.Equal(t, "error", got.Type)
	assert.Contains(t, got.Error, "not connected")
	assert.Equal(t, 1, mgr.ClientCount())
}

func TestReconnectReplacesConnection(t *testing.T) {
	mgr, srv := newTestServer(t)

	dial(t, srv, "t-u1")
	waitForClients(t, mgr, 1)

	second := dial(t, srv, "t-u1")
	waitForClients(t, mgr, 1)
	// Registration of the replacement races the count check; give it a beat.
	time.Sleep(50 * time.Millisecond)

	mgr.BroadcastStockUpdate(models.StockUpdate{Type: "stock_update", ProductID: "p9", Stock: 1})

	var got models.StockUpdate
	readFrame(t, second, &got)
	assert.Equal(t, "p9", got.ProductID)
}

func TestStopClosesClients(t *testing.T) {
	mgr, srv := newTestServer(t)

	dial(t, srv, "t-u1")
	waitForClients(t, mgr, 1)

	mgr.Stop()
	assert.Equal(t, 0, mgr.ClientCount())
}
