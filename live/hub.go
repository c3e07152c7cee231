// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	electionID string
	conn       *websocket.Conn
	send       chan []byte
}

type message struct {
	electionID string
	payload    []byte
}

// Hub fans turnout updates out to the websocket subscribers of each
// election. Run owns the subscriber set; everything else talks to it
// through channels.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan message
	done       chan struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// disconnects every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.electionID] == nil {
				h.clients[c.electionID] = make(map[*client]struct{})
			}
			h.clients[c.electionID][c] = struct{}{}
			n := len(h.clients[c.electionID])
			h.mu.Unlock()
			slog.Debug("live subscriber joined", "election_id", c.electionID, "subscribers", n)

		case c := <-h.unregister:
			h.mu.Lock()
			h.remove(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients[m.electionID] {
				select {
				case c.send <- m.payload:
				default:
					// Slow reader; drop it rather than stall everyone else.
					h.remove(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(c *client) {
	set, ok := h.clients[c.electionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.electionID)
	}
}

// Subscribers returns how many connections follow an election.
func (h *Hub) Subscribers(electionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[electionID])
}

// Broadcast queues an update for the election's subscribers. It never
// blocks the ballot path: when the queue is full the update is dropped,
// and the next one carries the newer count anyway.
func (h *Hub) Broadcast(u models.LiveUpdate) {
	payload, err := json.Marshal(u)
	if err != nil {
		slog.Error("failed to encode live update", "error", err)
		return
	}
	select {
	case h.broadcast <- message{electionID: u.ElectionID, payload: payload}:
	case <-h.done:
	default:
		slog.Warn("live update dropped", "election_id", u.ElectionID)
	}
}

// ServeWS upgrades the request and subscribes it to an election. The
// snapshot is the first message the client receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, electionID string, snapshot models.LiveUpdate) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	first, err := json.Marshal(snapshot)
	if err != nil {
		conn.Close()
		return err
	}

	c := &client{electionID: electionID, conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- first

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// readPump only watches for pongs and the close frame; subscribers do not
// send anything meaningful.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("live subscriber read error", "election_id", c.electionID, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
