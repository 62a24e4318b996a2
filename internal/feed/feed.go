// Package feed serves a read-only websocket stream of table events for
// spectators. Clients connect, optionally filtered to one channel, and
// receive every public event as JSON. Hole cards are never sent.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pgray/cardroom/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Envelope wraps an event for the wire.
type Envelope struct {
	Channel string    `json:"channel"`
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Data    any       `json:"data"`
}

// Hub fans table events out to connected spectators.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	channel string // empty means all channels
	once    sync.Once
}

// NewHub creates an empty spectator hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger.WithPrefix("feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Announcer returns an announcer that publishes one channel's events to
// the hub. Private deals are dropped before they reach the wire.
func (h *Hub) Announcer(channel string) game.Announcer {
	return &announcer{hub: h, channel: channel}
}

type announcer struct {
	hub     *Hub
	channel string
}

// Announce implements game.Announcer.
func (a *announcer) Announce(e game.Event) {
	if cd, ok := e.(game.CardsDealtEvent); ok && cd.Private {
		return
	}
	a.hub.publish(a.channel, e)
}

func (h *Hub) publish(channel string, e game.Event) {
	payload, err := json.Marshal(Envelope{
		Channel: channel,
		Type:    string(e.EventType()),
		At:      e.Timestamp(),
		Data:    e,
	})
	if err != nil {
		h.logger.Error("failed to encode event", "type", e.EventType(), "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.channel != "" && c.channel != channel {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow reader, drop it.
			delete(h.clients, c)
			c.close()
		}
	}
}

// Serve runs the spectator HTTP server until the context is canceled.
func (h *Hub) Serve(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", h.handleFeed)

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	h.logger.Info("spectator feed listening", "addr", listen)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		h.closeAll()
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (h *Hub) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		channel: r.URL.Query().Get("channel"),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("spectator connected", "remote", r.RemoteAddr, "channel", c.channel)

	go c.writePump()
	go h.readPump(c)
}

// readPump discards anything the spectator sends and detects the close.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
