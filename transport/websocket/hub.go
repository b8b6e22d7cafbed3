package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"barikade/game/engine"
	"barikade/game/service"
	"barikade/transport/protocol"
)

// errRateLimited is sent to peers that exceed the inbound message budget
var errRateLimited = engine.NewRuleError("rate_limited", "too many messages, slow down")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Large enough for a BOARD_SET
	// carrying a full board definition.
	maxMessageSize = 512 * 1024

	// Outbound queue per connection; a peer that cannot drain this is cut.
	sendBufferSize = 256

	// Inbound message budget per connection.
	msgRate  = 10
	msgBurst = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from anywhere; rooms are guarded by
		// their codes, not by origin.
		return true
	},
}

// Dispatcher receives connection lifecycle callbacks and client messages.
// The game service implements it.
type Dispatcher interface {
	HandleConnect(c service.ClientConn)
	HandleMessage(c service.ClientConn, raw []byte)
	HandleDisconnect(c service.ClientConn)
}

// roomMessage is one payload addressed to every connection in a room
type roomMessage struct {
	code string
	data []byte
}

// Client is one websocket connection. It carries the per-connection state
// the dispatcher needs and implements service.ClientConn.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	limiter   *rate.Limiter
	closeOnce sync.Once

	mu        sync.Mutex
	sessionID string
	connSeq   uint64
	roomCode  string
}

// Hub maintains the set of active connections and fans room broadcasts out
// to the connections sitting in each room.
type Hub struct {
	dispatcher Dispatcher
	log        zerolog.Logger

	clients    map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new websocket hub
func NewHub(dispatcher Dispatcher, log zerolog.Logger) *Hub {
	return &Hub{
		dispatcher: dispatcher,
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan roomMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetDispatcher binds the dispatcher after construction. The hub and the
// game service reference each other, so one of them has to be wired late.
// Must be called before ServeWS accepts its first connection.
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.dispatcher = d
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug().Int("clients", len(h.clients)).Msg("client unregistered")
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.RoomCode() != msg.code {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// The peer is not draining its queue; cut it rather
					// than stall the room.
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// BroadcastRoom sends msg to every connection in the room. It satisfies
// service.Broadcaster.
func (h *Hub) BroadcastRoom(code string, msg interface{}) {
	data, err := protocol.Encode(msg)
	if err != nil {
		h.log.Error().Err(err).Str("room", code).Msg("broadcast marshal failed")
		return
	}
	h.broadcast <- roomMessage{code: code, data: data}
}

// ServeWS upgrades an HTTP request and runs the connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(msgRate), msgBurst),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	h.dispatcher.HandleConnect(client)
}

// Send enqueues one server message for the peer, dropping the connection
// instead of blocking when the peer cannot keep up
func (c *Client) Send(msg interface{}) {
	data, err := protocol.Encode(msg)
	if err != nil {
		c.hub.log.Error().Err(err).Msg("send marshal failed")
		return
	}
	defer func() {
		// The send channel closes when the hub drops the client; a late
		// Send must not panic the dispatcher.
		recover()
	}()
	select {
	case c.send <- data:
	default:
		c.conn.Close()
	}
}

// Close shuts the connection down with a close frame carrying reason
func (c *Client) Close(reason string) {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.conn.Close()
	})
}

func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) SetSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

func (c *Client) ConnSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connSeq
}

func (c *Client) SetConnSeq(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connSeq = seq
}

func (c *Client) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *Client) SetRoomCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// readPump pumps messages from the websocket connection to the dispatcher.
// Disconnect handling runs here, on the connection's own goroutine, so a
// broadcast triggered by a disconnect never re-enters the hub loop.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.hub.dispatcher.HandleDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read ended")
			}
			break
		}
		if !c.limiter.Allow() {
			c.Send(protocol.NewError(errRateLimited))
			continue
		}
		c.hub.dispatcher.HandleMessage(c, data)
	}
}

// writePump pumps queued messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
