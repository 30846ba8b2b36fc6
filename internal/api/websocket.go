package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/slide-scroller/overlay/internal/events"
)

// WebSocket message types
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypePong      = "pong"
	MsgTypeError     = "error"
)

// DefaultClientBuffer is the number of messages queued per client before
// further messages are dropped.
const DefaultClientBuffer = 64

const writeWait = 5 * time.Second

// WSMessage is the envelope for every frame on the socket. Bus messages use
// their topic as Type.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error message
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type wsClient struct {
	conn    *websocket.Conn
	send    chan WSMessage
	dropped atomic.Uint64
}

// enqueue never blocks; a full buffer drops the message.
func (cl *wsClient) enqueue(msg WSMessage) bool {
	select {
	case cl.send <- msg:
		return true
	default:
		cl.dropped.Add(1)
		return false
	}
}

// Hub fans bus notifications out to websocket clients. The bus delivers on
// the event loop goroutine, so a slow client must never block it.
type Hub struct {
	upgrader websocket.Upgrader
	buffer   int
	sub      *events.Subscription

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
	logger  *slog.Logger
}

// NewHub creates a hub subscribed to every topic on bus.
func NewHub(bus *events.Bus, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	h := &Hub{
		upgrader: websocket.Upgrader{
			// The control server only listens on loopback.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		buffer:  buffer,
		clients: make(map[*wsClient]struct{}),
		logger:  slog.With("component", "websocket"),
	}
	h.sub = bus.Subscribe(h.broadcast)
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(m events.Message) {
	msg := WSMessage{
		Type:      string(m.Topic),
		ID:        m.ID,
		Timestamp: m.Time.UnixMilli(),
	}
	if m.Payload != nil {
		msg.Payload = mustJSON(m.Payload)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		if !cl.enqueue(msg) {
			h.logger.Debug("client buffer full, message dropped",
				"topic", m.Topic,
				"dropped", cl.dropped.Load())
		}
	}
}

func (h *Hub) register(cl *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl] = struct{}{}
	return true
}

func (h *Hub) unregister(cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
}

// HandleWebSocket upgrades the connection and streams bus messages until the
// client disconnects.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	cl := &wsClient{conn: ws, send: make(chan WSMessage, h.buffer)}
	cl.enqueue(WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})
	if !h.register(cl) {
		return nil
	}
	defer h.unregister(cl)

	h.logger.Info("client connected", "remote", ws.RemoteAddr().String())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(cl)
	}()

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("connection error", "error", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			cl.enqueue(WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
		default:
			cl.enqueue(WSMessage{
				Type:      MsgTypeError,
				Timestamp: time.Now().UnixMilli(),
				Payload: mustJSON(WSErrorResponse{
					Message: "Unknown message type: " + msg.Type,
					Code:    "INVALID_TYPE",
				}),
			})
		}
	}

	h.unregister(cl)
	<-writerDone
	h.logger.Info("client disconnected", "remote", ws.RemoteAddr().String(), "dropped", cl.dropped.Load())
	return nil
}

func (h *Hub) writePump(cl *wsClient) {
	for msg := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteJSON(msg); err != nil {
			h.logger.Warn("failed to send message", "error", err)
			cl.conn.Close()
			// Drain so unregister can close the channel without blocking senders.
			for range cl.send {
			}
			return
		}
	}
}

// Close detaches the hub from the bus and disconnects every client.
func (h *Hub) Close() {
	h.sub.Unsubscribe()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for cl := range h.clients {
		cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		cl.conn.Close()
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
