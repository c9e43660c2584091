package server

import (
	"context"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/omarshaarawi/hoopscores/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// ServerMessage is pushed to every connected board.
type ServerMessage struct {
	Type string        `json:"type"`
	View models.View   `json:"view"`
	HTML template.HTML `json:"html"`
}

// ClientMessage is what a board sends back: navigation, pause and
// visibility changes.
type ClientMessage struct {
	Type    string `json:"type"`
	Visible *bool  `json:"visible,omitempty"`
	Team    string `json:"team,omitempty"`
}

// Hub fans rendered views out to WebSocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds c and queues the board it should show first. current is read
// under the hub lock so no render can land between the two.
func (h *Hub) Register(c *Client, current func() models.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg, err := newViewMessage(current()); err == nil {
		c.send <- msg
	} else {
		slog.Error("Error rendering board", "client", c.ID, "error", err)
	}
	h.clients[c] = struct{}{}
	slog.Info("Board connected", "client", c.ID, "clients", len(h.clients))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	slog.Info("Board disconnected", "client", c.ID, "clients", len(h.clients))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Render implements service.Renderer. Slow clients miss views rather than
// holding up the rotator.
func (h *Hub) Render(view models.View) {
	msg, err := newViewMessage(view)
	if err != nil {
		slog.Error("Error rendering board", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slog.Warn("Dropping view for slow client", "client", c.ID)
		}
	}
}

func newViewMessage(view models.View) (ServerMessage, error) {
	html, err := RenderBoard(view)
	if err != nil {
		return ServerMessage{}, err
	}
	return ServerMessage{Type: "view", View: view, HTML: html}, nil
}

// Client is one connected board.
type Client struct {
	ID       string
	conn     *websocket.Conn
	send     chan ServerMessage
	hub      *Hub
	dispatch func(ctx context.Context, c *Client, msg ClientMessage)

	// visible tracks the board's last reported visibility so only a
	// hidden to visible edge triggers a staleness check.
	visible bool
}

func NewClient(id string, conn *websocket.Conn, hub *Hub, dispatch func(context.Context, *Client, ClientMessage)) *Client {
	return &Client{
		ID:       id,
		conn:     conn,
		send:     make(chan ServerMessage, sendBufferSize),
		hub:      hub,
		dispatch: dispatch,
		visible:  true,
	}
}

// BecameVisible records a visibility report and reports whether it is a
// hidden to visible transition.
func (c *Client) BecameVisible(visible bool) bool {
	wasHidden := !c.visible
	c.visible = visible
	return visible && wasHidden
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Unexpected close", "client", c.ID, "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.dispatch(ctx, c, msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Warn("Write error", "client", c.ID, "error", err)
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
