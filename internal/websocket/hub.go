package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Upper bound on a turn started from the socket
	turnTimeout = 60 * time.Second

	sendBuffer = 256

	// Utterances waiting for this client's turn worker
	turnQueue = 16
)

var upgrader = websocket.Upgrader{
	// The UI is served from a different origin during development
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// CallHandler is the part of the call controller the hub needs
type CallHandler interface {
	usecase.UtteranceHandler
	Snapshot() entities.CallSession
}

// Hub maintains the set of connected UI clients and fans out events to them
type Hub struct {
	// Registered clients. Only touched by Run.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// Closed when Run returns
	done chan struct{}

	logger *zap.Logger
}

// Ensure Hub can be handed to the call controller as its event sink
var _ usecase.EventPublisher = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// releasing every client. Only Run closes a client's done channel; send
// channels are never closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("Client registered",
				zap.String("remote", client.remote),
				zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.release(client)
				h.logger.Info("Client unregistered", zap.String("remote", client.remote))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer
					h.release(client)
					h.logger.Warn("Dropping slow client", zap.String("remote", client.remote))
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				h.release(client)
			}
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// release forgets client and stops its pumps and turn worker
func (h *Hub) release(client *Client) {
	delete(h.clients, client)
	close(client.done)
}

// Publish broadcasts an event to every connected client. It never blocks;
// events are dropped when the broadcast buffer is full.
func (h *Hub) Publish(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Broadcast buffer full, dropping event", zap.String("type", string(event.Type)))
	}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Closed by the hub when the client is released
	done chan struct{}

	// Utterances handled one at a time, in arrival order
	turns chan string

	calls  CallHandler
	remote string
	logger *zap.Logger
}

// HandleWebSocket upgrades the request and attaches the client to the hub.
// The client first receives the current call status; its utterances are
// run against calls.
func HandleWebSocket(hub *Hub, calls CallHandler, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(hub, conn, calls, c.RealIP(), logger)

	// Queue the snapshot before the client is visible to broadcasts so it
	// is always the first message
	client.sendEvent(domain.NewEvent(domain.EventCallStatus, calls.Snapshot()))
	select {
	case client.hub.register <- client:
	case <-hub.done:
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()
	go client.turnLoop()

	return nil
}

func newClient(hub *Hub, conn *websocket.Conn, calls CallHandler, remote string, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		turns:  make(chan string, turnQueue),
		calls:  calls,
		remote: remote,
		logger: logger,
	}
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.sendEvent(CreateErrorEvent(ErrorCodeUnsupportedFrame, "only JSON text messages are accepted"))
			continue
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
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

// processMessage processes incoming messages from the UI
func (c *Client) processMessage(message []byte) {
	msg, err := ParseClientMessage(message)
	if err != nil {
		c.logger.Warn("Rejected client message", zap.Error(err))
		c.sendEvent(CreateErrorEvent(ErrorCodeInvalidMessage, err.Error()))
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.sendEvent(CreatePongEvent(msg.Data))
	case MessageTypeUtterance:
		// Blocks only while the queue is full
		select {
		case c.turns <- msg.Text:
		case <-c.done:
		}
	}
}

// turnLoop runs queued utterances one at a time until the client is released
func (c *Client) turnLoop() {
	for {
		select {
		case <-c.done:
			return
		case text := <-c.turns:
			c.handleUtterance(text)
		}
	}
}

func (c *Client) handleUtterance(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	result, err := c.calls.HandleUtterance(ctx, text)
	if err != nil {
		c.logger.Warn("Utterance turn failed", zap.String("remote", c.remote), zap.Error(err))
		c.sendEvent(CreateErrorEvent(turnErrorCode(err), err.Error()))
		return
	}

	c.sendEvent(domain.NewEvent(domain.EventAssistantReply, result))
}

// sendEvent queues an event for this client only. Events for a released
// client are dropped.
func (c *Client) sendEvent(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("Failed to encode event", zap.Error(err))
		return
	}

	select {
	case <-c.done:
		c.logger.Debug("Client gone, event dropped", zap.String("type", string(event.Type)))
		return
	default:
	}

	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Client send buffer full, event dropped", zap.String("type", string(event.Type)))
	}
}
