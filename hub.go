/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/pholight/lights"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var errHubStopped = errors.New("hub stopped")

// Client is one websocket connection. Everything else the relay knows
// about it, including its role, lives in the relay's registry.
type Client struct {
	id      lights.ConnID
	conn    *websocket.Conn
	send    chan []byte
	addr    string
	limiter *rateLimiter
}

type inboundMessage struct {
	client  *Client
	payload []byte
}

// Hub serializes every connection event onto the run goroutine, which is
// the only goroutine that touches the relay.
type Hub struct {
	cfg     *Config
	clients map[lights.ConnID]*Client
	relay   *lights.Relay

	register chan *Client
	unreg    chan *Client
	inbound  chan inboundMessage
	stats    chan chan lights.Stats

	done chan struct{}
}

func newHub(cfg *Config, auth *lights.PasswordAuthority) *Hub {
	h := &Hub{
		cfg:      cfg,
		clients:  make(map[lights.ConnID]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		inbound:  make(chan inboundMessage),
		stats:    make(chan chan lights.Stats),
		done:     make(chan struct{}),
	}

	h.relay = lights.NewRelay(h, auth, relayLogger(cfg), lights.ExclusiveHost(cfg.exclusiveHost))

	return h
}

// Send queues payload for id without blocking. Only called from run.
func (h *Hub) Send(id lights.ConnID, payload []byte) error {
	c, ok := h.clients[id]
	if !ok {
		return lights.ErrClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return lights.ErrBufferFull
	}
}

// IsOpen reports whether id is still registered. Only called from run.
func (h *Hub) IsOpen(id lights.ConnID) bool {
	_, ok := h.clients[id]

	return ok
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	var sweep <-chan time.Time
	if h.cfg.expirySweep > 0 {
		ticker := time.NewTicker(h.cfg.expirySweep)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()

			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.relay.Connect(c.id)

		case c := <-h.unreg:
			if _, ok := h.clients[c.id]; !ok {
				continue
			}
			delete(h.clients, c.id)
			close(c.send)
			h.relay.Disconnect(c.id)

		case m := <-h.inbound:
			if _, ok := h.clients[m.client.id]; !ok {
				continue
			}
			h.relay.Message(m.client.id, m.payload)

		case <-sweep:
			h.relay.Sweep()

		case reply := <-h.stats:
			reply <- h.relay.Stats()
		}
	}
}

// closeAll disconnects every client (used on shutdown).
func (h *Hub) closeAll() {
	for id, c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, id)
	}

	logf(h.cfg, "LIGHTS: Closed all connections")
}

func (h *Hub) enter(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.done:
	}
}

// Stats asks the run goroutine for a snapshot of the relay.
func (h *Hub) Stats(ctx context.Context) (lights.Stats, error) {
	reply := make(chan lights.Stats, 1)

	select {
	case h.stats <- reply:
	case <-h.done:
		return lights.Stats{}, errHubStopped
	case <-ctx.Done():
		return lights.Stats{}, ctx.Err()
	}

	select {
	case stats := <-reply:
		return stats, nil
	case <-ctx.Done():
		return lights.Stats{}, ctx.Err()
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(h.cfg.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				logf(h.cfg, "LIGHTS: Message from %s exceeded %d bytes", c.addr, h.cfg.maxMessageSize)
			case websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived):
				logf(h.cfg, "LIGHTS: Read error from %s: %v", c.addr, err)
			}

			return
		}

		if !c.limiter.allow() {
			logf(h.cfg, "LIGHTS: Rate limit exceeded for %s; discarding message", c.addr)

			continue
		}

		select {
		case h.inbound <- inboundMessage{client: c, payload: payload}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newUpgrader(cfg *Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg),
	}
}

func serveWS(cfg *Config, hub *Hub) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "LIGHTS: Upgrade error from %s: %v", realIP(r), err)

			return
		}

		client := &Client{
			id:      lights.ConnID(uuid.NewString()),
			conn:    conn,
			send:    make(chan []byte, sendBuffer),
			addr:    realIP(r),
			limiter: newRateLimiter(cfg.rateLimitBurst, cfg.rateLimitInterval),
		}

		if !hub.enter(client) {
			_ = conn.Close()

			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}
