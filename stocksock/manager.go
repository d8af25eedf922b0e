package stocksock

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"vitrine/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

// TokenVerifier authenticates a raw token before the connection is
// upgraded. Returns the user id the token belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Manager tracks one connection per user and fans stock updates out to
// all of them. It is an explicit instance so tests can run isolated
// managers side by side.
type Manager struct {
	verifier TokenVerifier

	mu      sync.RWMutex
	clients map[string]*client
}

func NewManager(verifier TokenVerifier) *Manager {
	return &Manager{
		verifier: verifier,
		clients:  make(map[string]*client),
	}
}

// inbound is the only message shape clients may send: a private message
// relayed to another connected user.
type inbound struct {
	Type    string `json:"type"`
	To      string `json:"to"`
	Content string `json:"content"`
}

type privateFrame struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Content string `json:"content"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleWS authenticates, upgrades and pumps a connection. The token
// comes from the ?token query parameter or the Authorization header and
// is checked against both the JWT signature and the server-side token
// allowlist before the upgrade.
func (m *Manager) HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	userID, err := m.verifier.Verify(r.Context(), token)
	if err != nil {
		log.Println("WS auth failed:", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, 16)}

	m.mu.Lock()
	if prev, ok := m.clients[userID]; ok {
		// One connection per user; a reconnect replaces the old one.
		close(prev.send)
		prev.conn.Close()
	}
	m.clients[userID] = c
	m.mu.Unlock()
	log.Println("WS connected:", userID)

	go c.writePump()
	m.readPump(c)
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (m *Manager) readPump(c *client) {
	defer func() {
		m.drop(c)
		log.Println("WS disconnected:", c.userID)
	}()

	for {
		var in inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "private" {
			continue
		}
		m.relayPrivate(c, in)
	}
}

// relayPrivate forwards a message between two connected users. Delivery
// problems come back to the sender as error frames instead of closing
// the connection.
func (m *Manager) relayPrivate(from *client, in inbound) {
	if in.To == "" {
		m.pushError(from, "missing recipient")
		return
	}

	m.mu.RLock()
	target, ok := m.clients[in.To]
	m.mu.RUnlock()
	if !ok {
		m.pushError(from, "receiver not connected")
		return
	}

	data, err := json.Marshal(privateFrame{Type: "private", From: from.userID, Content: in.Content})
	if err != nil {
		return
	}
	if !m.push(target, data) {
		m.pushError(from, "receiver not reachable")
	}
}

func (m *Manager) pushError(c *client, msg string) {
	data, err := json.Marshal(errorFrame{Type: "error", Error: msg})
	if err != nil {
		return
	}
	m.push(c, data)
}

// push hands a frame to the client's writer without blocking. A full
// buffer means the client stopped reading; it gets dropped. The send
// happens under the read lock because drop closes the channel under the
// write lock.
func (m *Manager) push(c *client, data []byte) bool {
	m.mu.RLock()
	if cur, ok := m.clients[c.userID]; !ok || cur != c {
		m.mu.RUnlock()
		return false
	}
	select {
	case c.send <- data:
		m.mu.RUnlock()
		return true
	default:
		m.mu.RUnlock()
		m.drop(c)
		return false
	}
}

func (m *Manager) drop(c *client) {
	m.mu.Lock()
	if cur, ok := m.clients[c.userID]; ok && cur == c {
		delete(m.clients, c.userID)
		close(c.send)
	}
	m.mu.Unlock()
	c.conn.Close()
}

// BroadcastStockUpdate fans a stock change out to every connected
// client. There are no per-product subscriptions; everyone sees every
// update.
func (m *Manager) BroadcastStockUpdate(update models.StockUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("marshal stock update:", err)
		return
	}

	m.mu.RLock()
	targets := make([]*client, 0, len(m.clients))
	for _, c := range m.clients {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		m.push(c, data)
	}
}

// ClientCount reports how many users are currently connected.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Stop closes every connection and empties the registry.
func (m *Manager) Stop() {
	m.mu.Lock()
	for id, c := range m.clients {
		close(c.send)
		c.conn.Close()
		delete(m.clients, id)
	}
	m.mu.Unlock()
}
