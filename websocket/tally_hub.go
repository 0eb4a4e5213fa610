package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"arguepulse/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	writeWait  = 10 * time.Second

	// sendBuffer is how many tallies may queue for a slow client before it is dropped
	sendBuffer = 16
)

// TallyClient is one connection following the tallies of a statement.
// Tallies are queued on send and written by the client's own writer
// goroutine, so publishing never waits on a slow connection.
type TallyClient struct {
	Conn        *websocket.Conn
	StatementID string
	writeMu     sync.Mutex
	send        chan models.TallyEvent
	done        chan struct{}
}

// NewTallyClient wraps a connection following statementID
func NewTallyClient(conn *websocket.Conn, statementID string) *TallyClient {
	return &TallyClient{
		Conn:        conn,
		StatementID: statementID,
		send:        make(chan models.TallyEvent, sendBuffer),
		done:        make(chan struct{}),
	}
}

// SafeWriteJSON serializes writes to the client's connection
func (tc *TallyClient) SafeWriteJSON(v interface{}) error {
	tc.writeMu.Lock()
	defer tc.writeMu.Unlock()
	tc.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return tc.Conn.WriteJSON(v)
}

func (tc *TallyClient) ping() error {
	tc.writeMu.Lock()
	defer tc.writeMu.Unlock()
	return tc.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// TallyHub fans vote tallies out to the clients of each statement
type TallyHub struct {
	mu      sync.RWMutex
	clients map[string]map[*TallyClient]bool
}

// NewTallyHub creates an empty hub
func NewTallyHub() *TallyHub {
	return &TallyHub{clients: make(map[string]map[*TallyClient]bool)}
}

// Register adds a client to its statement's audience
func (h *TallyHub) Register(client *TallyClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	audience, ok := h.clients[client.StatementID]
	if !ok {
		audience = make(map[*TallyClient]bool)
		h.clients[client.StatementID] = audience
	}
	audience[client] = true
}

// Unregister removes a client, stops its writer and closes its connection
func (h *TallyHub) Unregister(client *TallyClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	audience, ok := h.clients[client.StatementID]
	if !ok || !audience[client] {
		return
	}
	delete(audience, client)
	if len(audience) == 0 {
		delete(h.clients, client.StatementID)
	}
	close(client.done)
	if client.Conn != nil {
		client.Conn.Close()
	}
}

// ClientCount returns the number of clients following statementID
func (h *TallyHub) ClientCount(statementID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[statementID])
}

// PublishTally queues the event for every client of its statement without
// blocking. A client whose queue is full is too slow to follow and is dropped.
func (h *TallyHub) PublishTally(event models.TallyEvent) {
	h.mu.RLock()
	audience := make([]*TallyClient, 0, len(h.clients[event.StatementID]))
	for client := range h.clients[event.StatementID] {
		audience = append(audience, client)
	}
	h.mu.RUnlock()

	for _, client := range audience {
		select {
		case client.send <- event:
		default:
			log.Printf("Dropping slow tally client for statement %s", client.StatementID)
			go h.Unregister(client)
		}
	}
}

// writePump delivers queued tallies and keeps the connection alive with pings
func (tc *TallyClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-tc.done:
			return
		case event := <-tc.send:
			if err := tc.SafeWriteJSON(event); err != nil {
				log.Printf("Error sending tally to client: %v", err)
				// closing makes the read loop exit and unregister the client
				tc.Conn.Close()
				return
			}
		case <-ticker.C:
			if err := tc.ping(); err != nil {
				tc.Conn.Close()
				return
			}
		}
	}
}

// Serve upgrades the request and streams tallies for statementID until the
// client goes away. initial, when non-nil, is sent right after the upgrade.
func (h *TallyHub) Serve(w http.ResponseWriter, r *http.Request, statementID string, initial *models.TallyEvent) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewTallyClient(conn, statementID)

	// the initial snapshot is written before the writer starts, so it always comes first
	if initial != nil {
		if err := client.SafeWriteJSON(initial); err != nil {
			conn.Close()
			return
		}
	}

	h.Register(client)
	defer h.Unregister(client)
	go client.writePump()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The feed is one-way; reading only drains control frames and detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
