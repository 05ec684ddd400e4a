package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Hub keeps the live subscribers of each salon's queue. Every queue mutation
// publishes the freshly projected snapshot to everyone watching that salon.
type Hub struct {
	// Connections grouped by salon ID.
	rooms map[string]map[*Client]bool
	// Channel for registering a new client.
	register chan *Client
	// Channel for removing a client.
	unregister chan *Client
	// Channel for broadcasting messages to a single salon's room.
	broadcast chan Broadcast
}

// Broadcast is a message destined for every subscriber of one salon.
type Broadcast struct {
	SalonID string
	Message []byte
}

// Process-wide hub instance, started from main.
var HubInstance = NewHub()

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Broadcast),
	}
}

// Run processes the hub channels. Meant to be started once, in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.rooms[client.SalonID] == nil {
				h.rooms[client.SalonID] = make(map[*Client]bool)
			}
			h.rooms[client.SalonID][client] = true
		case client := <-h.unregister:
			if clients, ok := h.rooms[client.SalonID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.SalonID)
					}
				}
			}
		case message := <-h.broadcast:
			if clients, ok := h.rooms[message.SalonID]; ok {
				for client := range clients {
					select {
					case client.send <- message.Message:
					default:
						close(client.send)
						delete(clients, client)
					}
				}
			}
		}
	}
}

// Publish sends a message to every subscriber of the given salon.
func (h *Hub) Publish(salonID string, message []byte) {
	h.broadcast <- Broadcast{SalonID: salonID, Message: message}
}

// Client is one WebSocket connection subscribed to a salon's queue.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	SalonID string
}

// readPump discards inbound frames; subscribers are read-only. Its job is to
// notice the connection going away and unregister the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump pushes messages from the send channel to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Serve upgrades the request, registers the connection in the hub and blocks
// until the subscriber disconnects. An optional initial payload (the current
// queue snapshot) is delivered before any broadcast.
func Serve(h *Hub, w http.ResponseWriter, r *http.Request, salonID string, initial []byte) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		SalonID: salonID,
	}
	h.register <- client

	if initial != nil {
		client.send <- initial
	}

	go client.writePump()
	client.readPump()
	return nil
}
