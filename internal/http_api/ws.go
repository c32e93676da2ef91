package http_api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

const (
	// writeWait is the deadline for a single websocket write.
	writeWait = 10 * time.Second
	// clientBuffer is how many events a slow client may lag before being dropped.
	clientBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served with open CORS; the websocket feed follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub fans journal events out to connected websocket clients. It
// implements journal.Subscriber, so Notify runs on the journal's dispatch
// goroutine and must never block on a slow client.
type EventHub struct {
	logger *logger.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan *models.Event
}

func NewEventHub(logger *logger.Logger) *EventHub {
	return &EventHub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Notify implements journal.Subscriber. Clients that cannot keep up are
// disconnected rather than backpressuring the journal.
func (h *EventHub) Notify(event *models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.logger.Warn("Dropping slow websocket client")
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *EventHub) register(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) unregister(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// eventsWebsocket is a handler for the /events/ws endpoint. It upgrades the
// connection and streams every journal event as JSON until the client leaves.
func (s *HTTPServer) eventsWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade websocket: ", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan *models.Event, clientBuffer)}
	s.hub.register(client)
	s.logger.Debug("Websocket client connected", "remote", conn.RemoteAddr().String())

	go s.hub.writePump(client)
	s.hub.readPump(client)
}

// readPump discards inbound frames and tears the client down when the
// connection closes.
func (h *EventHub) readPump(client *wsClient) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
	}()
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventHub) writePump(client *wsClient) {
	defer client.conn.Close()
	for event := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(event); err != nil {
			h.unregister(client)
			return
		}
	}
	// Hub closed the channel: tell the client before dropping the connection.
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
